package browser

import (
	"net/url"
	"path"
	"strings"

	"demoreel/internal/pkg/errors"
)

// ErrNoLink matches, under errors.Is, the error returned when a page has no
// anchor for a LinkRule. The playback loop treats it as a skipped phase
// change. Callers get a fresh value from NoLink; ErrNoLink is never returned.
var ErrNoLink = errors.New(errors.CodeNavigation, "no matching link on page")

// NoLink builds the error for a page without an anchor matching rule.
func NoLink(rule LinkRule) *errors.Error {
	return errors.New(errors.CodeNavigation, ErrNoLink.Message).WithField("rule", rule.Name)
}

// LinkRule selects the anchor a phase change follows.
type LinkRule struct {
	Name string
	// Extensions the href path must end with.
	Extensions []string
	// Preferred file names; the first anchor naming one wins over plain
	// extension matches.
	Preferred []string
}

// CodeFiles finds a source file worth showing.
var CodeFiles = LinkRule{
	Name:       "code",
	Extensions: []string{".py", ".js"},
	Preferred:  []string{"scraper.py", "lead_generator.py", "invoice_parser.py", "main.py"},
}

// DataFiles finds a generated output file.
var DataFiles = LinkRule{
	Name:       "output",
	Extensions: []string{".csv", ".json"},
}

// PickLink returns the index of the href rule selects.
func PickLink(hrefs []string, rule LinkRule) (int, bool) {
	first := -1
	for i, href := range hrefs {
		p := hrefPath(href)
		if !hasAnySuffix(p, rule.Extensions) {
			continue
		}
		if first < 0 {
			first = i
		}
		base := path.Base(p)
		for _, name := range rule.Preferred {
			if strings.EqualFold(base, name) {
				return i, true
			}
		}
	}
	return first, first >= 0
}

// hrefPath strips scheme, host, query and fragment from an href.
func hrefPath(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Path)
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, strings.ToLower(suf)) {
			return true
		}
	}
	return false
}
