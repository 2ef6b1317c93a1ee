package mention

import "testing"

func TestNewParsesAuthorYear(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		author string
		year   int
	}{
		{"et al style", "Smith et al. 2020", "Smith", 2020},
		{"parenthesized year", "Smith et al. (2021)", "Smith", 2021},
		{"comma separated", "Smith, 2019 - Deep Learning", "Smith", 2019},
		{"two authors", "Smith & Jones 2022", "Smith", 2022},
		{"hyphenated surname", "Lloyd-Price et al. 2017", "Lloyd-Price", 2017},
		{"no year", "Smith on generalization", "Smith", 0},
		{"no author", "the 2020 report", "", 2020},
		{"lowercase start", "see smith 2020", "", 2020},
		{"empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.text, "https://example.com")
			if m.AuthorLast != tt.author {
				t.Errorf("AuthorLast = %q, want %q", m.AuthorLast, tt.author)
			}
			if m.Year != tt.year {
				t.Errorf("Year = %d, want %d", m.Year, tt.year)
			}
		})
	}
}

func TestNewTrimsTextAndTarget(t *testing.T) {
	m := New("  Smith 2020  ", " https://doi.org/10.1234/abcd ")
	if m.Text != "Smith 2020" {
		t.Errorf("Text = %q", m.Text)
	}
	if m.Target != "https://doi.org/10.1234/abcd" {
		t.Errorf("Target = %q", m.Target)
	}
}
