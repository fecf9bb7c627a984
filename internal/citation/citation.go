// Package citation formats normalized work records into citation strings.
package citation

import (
	"fmt"
	"strings"
)

// Work carries the bibliographic fields a citation can be built from.
// Any field may be empty; formatting degrades instead of failing.
type Work struct {
	Title     string
	Authors   []string
	Year      int
	Journal   string
	Volume    string
	Issue     string
	FirstPage string
	LastPage  string
	DOI       string
}

func authorString(authors []string) string {
	if len(authors) == 0 {
		return "Anonymous"
	}
	return strings.Join(authors, ", ")
}

func yearString(year int) string {
	if year == 0 {
		return "n.d."
	}
	return fmt.Sprintf("%d", year)
}

func titleOrDefault(title string) string {
	if title == "" {
		return "No title"
	}
	return title
}

// APA formats a work as
// Author, A. (Year). Title. Journal, Volume(Issue), pages. https://doi.org/xxx
func APA(w Work) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s). %s. %s", authorString(w.Authors), yearString(w.Year), titleOrDefault(w.Title), w.Journal)
	if w.Volume != "" {
		fmt.Fprintf(&b, ", %s", w.Volume)
		if w.Issue != "" {
			fmt.Fprintf(&b, "(%s)", w.Issue)
		}
	}
	if w.FirstPage != "" {
		fmt.Fprintf(&b, ", %s", w.FirstPage)
		if w.LastPage != "" {
			fmt.Fprintf(&b, "-%s", w.LastPage)
		}
	}
	if w.DOI != "" {
		fmt.Fprintf(&b, ". https://doi.org/%s", w.DOI)
	} else {
		b.WriteString(".")
	}
	return b.String()
}

// MLA formats a work as
// Author. "Title." Journal, vol. V, no. I, Year, pp. Pages.
func MLA(w Work) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s. %q %s", authorString(w.Authors), titleOrDefault(w.Title)+".", w.Journal)
	if w.Volume != "" {
		fmt.Fprintf(&b, ", vol. %s", w.Volume)
		if w.Issue != "" {
			fmt.Fprintf(&b, ", no. %s", w.Issue)
		}
	}
	fmt.Fprintf(&b, ", %s", yearString(w.Year))
	if w.FirstPage != "" {
		fmt.Fprintf(&b, ", pp. %s", w.FirstPage)
		if w.LastPage != "" {
			fmt.Fprintf(&b, "-%s", w.LastPage)
		}
	}
	b.WriteString(".")
	return b.String()
}

// IEEE formats a work as a numbered entry:
// [n] Authors, "Title," in Journal, vol. V, no. I, pp. A-B, Year. doi: xxx
func IEEE(w Work, index int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s, %q ", index, authorString(w.Authors), titleOrDefault(w.Title)+",")
	if w.Journal != "" {
		fmt.Fprintf(&b, "in %s, ", w.Journal)
	}
	if w.Volume != "" {
		fmt.Fprintf(&b, "vol. %s, ", w.Volume)
	}
	if w.Issue != "" {
		fmt.Fprintf(&b, "no. %s, ", w.Issue)
	}
	if w.FirstPage != "" {
		if w.LastPage != "" {
			fmt.Fprintf(&b, "pp. %s-%s, ", w.FirstPage, w.LastPage)
		} else {
			fmt.Fprintf(&b, "p. %s, ", w.FirstPage)
		}
	}
	fmt.Fprintf(&b, "%s.", yearString(w.Year))
	if w.DOI != "" {
		fmt.Fprintf(&b, " doi: %s", w.DOI)
	}
	return b.String()
}

// Format renders a work in the named style. Unknown styles fall back to
// APA. The index only matters for numbered styles.
func Format(style string, w Work, index int) string {
	switch strings.ToLower(style) {
	case "mla":
		return MLA(w)
	case "ieee":
		return IEEE(w, index)
	default:
		return APA(w)
	}
}

// ReferenceLine builds the one-line entry appended to a paper's running
// references block: authors (year). title. plus the DOI when known.
func ReferenceLine(authors []string, year int, title, doi string) string {
	line := fmt.Sprintf("%s (%s). %s.", authorString(authors), yearString(year), titleOrDefault(title))
	if doi != "" {
		line += fmt.Sprintf(" DOI: %s", doi)
	}
	return line
}
