// Package validate implements the three independent quality gates applied at
// distinct pipeline stages. Each gate is a pure predicate-plus-reason-list
// function; none is ever skipped silently.
package validate

// Severity grades an issue. A single Critical anywhere stops the pipeline;
// Warnings are surfaced but do not.
type Severity string

const (
	Warning  Severity = "warning"
	Critical Severity = "critical"
)

// Issue is one defect found by a gate, attached to the offending key.
type Issue struct {
	Severity Severity `json:"severity"`
	Reason   string   `json:"reason"`
	Key      string   `json:"key"`
}

// HasCritical reports whether any issue in the list is Critical.
func HasCritical(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == Critical {
			return true
		}
	}
	return false
}
