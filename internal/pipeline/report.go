package pipeline

import (
	"fmt"
	"strings"

	"github.com/matsen/refmark/internal/match"
	"github.com/matsen/refmark/internal/validate"
)

// Report collects everything a run found: match statistics, the replacement
// count, and every issue the gates raised. Success is never true while a
// critical issue is present.
type Report struct {
	Success  bool             `json:"success"`
	Stats    match.Stats      `json:"stats"`
	Replaced int              `json:"replaced"`
	Issues   []validate.Issue `json:"issues,omitempty"`
}

// NewReport returns an empty, unsuccessful report.
func NewReport() *Report {
	return &Report{}
}

// AddIssue records an issue. Adding a critical issue clears Success.
func (r *Report) AddIssue(issue validate.Issue) {
	r.Issues = append(r.Issues, issue)
	if issue.Severity == validate.Critical {
		r.Success = false
	}
}

// AddWarning records a warning-level issue for the given key.
func (r *Report) AddWarning(reason, key string) {
	r.AddIssue(validate.Issue{
		Severity: validate.Warning,
		Reason:   reason,
		Key:      key,
	})
}

// HasCritical reports whether any recorded issue is critical.
func (r *Report) HasCritical() bool {
	return validate.HasCritical(r.Issues)
}

// Criticals returns the critical issues in recording order.
func (r *Report) Criticals() []validate.Issue {
	return r.bySeverity(validate.Critical)
}

// Warnings returns the warning issues in recording order.
func (r *Report) Warnings() []validate.Issue {
	return r.bySeverity(validate.Warning)
}

func (r *Report) bySeverity(s validate.Severity) []validate.Issue {
	var out []validate.Issue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

// Human renders the report for terminal reading.
func (r *Report) Human() string {
	var b strings.Builder

	if r.Success {
		b.WriteString("Resolution succeeded.\n")
	} else {
		b.WriteString("Resolution failed.\n")
	}

	fmt.Fprintf(&b, "  mentions: %d  replaced: %d\n", r.Stats.Processed, r.Replaced)
	fmt.Fprintf(&b, "  matched: doi=%d arxiv=%d isbn=%d pmid=%d url=%d  unmatched=%d\n",
		r.Stats.ByDOI, r.Stats.ByArXiv, r.Stats.ByISBN, r.Stats.ByPMID,
		r.Stats.ByURL, r.Stats.Unmatched)

	for _, issue := range append(r.Criticals(), r.Warnings()...) {
		if issue.Key != "" {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", issue.Severity, issue.Key, issue.Reason)
		} else {
			fmt.Fprintf(&b, "  [%s] %s\n", issue.Severity, issue.Reason)
		}
	}

	return b.String()
}
