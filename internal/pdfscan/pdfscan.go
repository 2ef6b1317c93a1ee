// Package pdfscan pulls persistent identifiers out of PDF files so their
// records can be added to the corpus without hand transcription.
package pdfscan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/refmark/internal/ident"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

var arxivPattern = regexp.MustCompile(`(?i)arXiv:\s*(\d{4}\.\d{4,5})(v\d+)?`)

// Scan describes the identifiers found in a single PDF.
type Scan struct {
	Path     string   `json:"path"`
	Title    string   `json:"title,omitempty"`
	DOIs     []string `json:"dois,omitempty"`
	ArXivIDs []string `json:"arxiv_ids,omitempty"`
}

// File scans the first few pages of a PDF for DOIs, arXiv identifiers, and
// a best-effort title.
func File(path string) (*Scan, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	// Identifiers are almost always on the first pages.
	maxPages := 3
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	scan := &Scan{Path: path}
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if i == 1 && scan.Title == "" {
			scan.Title = firstSubstantialLine(text)
		}
		scan.DOIs = appendUnique(scan.DOIs, findDOIs(text))
		scan.ArXivIDs = appendUnique(scan.ArXivIDs, findArXivIDs(text))
	}

	return scan, nil
}

// findDOIs returns the normalized DOIs present in text, in order of first
// appearance.
func findDOIs(text string) []string {
	var dois []string
	for _, m := range doiPattern.FindAllString(text, -1) {
		if doi, ok := ident.NormalizeDOI(m); ok {
			dois = append(dois, doi)
		}
	}
	return dois
}

func findArXivIDs(text string) []string {
	var ids []string
	for _, m := range arxivPattern.FindAllStringSubmatch(text, -1) {
		if id, ok := ident.NormalizeArXiv(m[1]); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func appendUnique(existing []string, found []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range found {
		if !seen[s] {
			existing = append(existing, s)
			seen[s] = true
		}
	}
	return existing
}

// firstSubstantialLine returns the first line long enough to be a title,
// skipping likely headers and footers.
func firstSubstantialLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") {
		return true
	}
	if strings.Contains(lower, "article") && strings.Contains(lower, "published") {
		return true
	}
	return false
}
