// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"already clean", "Deep Learning", "Deep Learning"},
		{"inner runs", "Deep   Learning\t for\n Robots", "Deep Learning for Robots"},
		{"surrounding space", "  padded  ", "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"embedded year", "Journal of Testing, 2019", "2019"},
		{"nineteen hundreds", "Proc. ICML 1998", "1998"},
		{"no year", "Journal of Testing", ""},
		{"five digits not a year", "catalog 20199X", ""},
		{"first of several", "2015; reprinted 2018", "2015"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractYear(tt.input))
		})
	}
}

func TestExtractDOI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "DOI: 10.1145/1234567.1234568", "10.1145/1234567.1234568"},
		{"trailing period", "see 10.1038/s41586-024-07487-w.", "10.1038/s41586-024-07487-w"},
		{"none", "no identifier here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDOI(tt.input))
		})
	}
}

func TestDOIFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"doi.org", "https://doi.org/10.1234/example.5678", "10.1234/example.5678"},
		{"publisher pdf path", "https://pub.org/doi/pdf/10.1122/abcd.efgh?download=1", "10.1122/abcd.efgh"},
		{"query param", "https://example.org/lookup?doi=10.5555/a.b", "10.5555/a.b"},
		{"generic doi path", "https://journals.example/doi/10.1000/xyz", "10.1000/xyz"},
		{"no doi", "https://example.org/articles/2023", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DOIFromURL(tt.url))
		})
	}
}

func TestParseCitationCount(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{"bare number", "5754", 5754, true},
		{"thousands separator", "Cited by 5,754", 5754, true},
		{"zero confirmed", "0", 0, true},
		{"no count", "", 0, false},
		{"words only", "Cited by many", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCitationCount(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestExtractEncodedURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{
			"data-clk url param",
			"hl=en&url=https%3A%2F%2Fhost.org%2Fpaper.pdf",
			[]string{"https://host.org/paper.pdf"},
		},
		{
			"html entities and q param",
			"x=1&amp;q=https%3A%2F%2Fmirror.net%2Fdoc",
			[]string{"https://mirror.net/doc"},
		},
		{
			"multiple params",
			"u=https%3A%2F%2Fa.org%2F1;href=https%3A%2F%2Fb.org%2F2",
			[]string{"https://a.org/1", "https://b.org/2"},
		},
		{"no url params", "hl=en&view=list", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEncodedURLs(tt.input))
		})
	}
}
