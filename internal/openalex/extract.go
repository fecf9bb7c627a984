package openalex

import (
	"sort"
	"strings"
)

// ReferenceCandidate is one normalized search hit considered for
// citation. Immutable once constructed; held only for the duration of
// one section-generation request.
type ReferenceCandidate struct {
	ID        string
	Title     string
	Authors   []string
	Abstract  string
	DOI       string
	Year      int
	Keywords  []string
	Citations int
	URL       string
	Journal   string
	Volume    string
	Issue     string
	FirstPage string
	LastPage  string
	Links     []DownloadLink

	// Partial marks a candidate missing its abstract or DOI. Callers
	// that need fully-populated records can filter on it.
	Partial bool
}

// ExtractCandidate normalizes a raw work into a ReferenceCandidate.
// Missing optional fields degrade to defaults and never cause an error.
func ExtractCandidate(w Work) ReferenceCandidate {
	title := w.Title
	if title == "" {
		title = "No title"
	}

	abstract := w.Abstract
	if abstract == "" {
		abstract = reconstructAbstract(w.AbstractInvertedIndex)
	}

	doi := strings.TrimPrefix(w.DOI, "https://doi.org/")

	var authors []string
	for _, authorship := range w.Authorships {
		if authorship.Author.DisplayName != "" {
			authors = append(authors, authorship.Author.DisplayName)
		}
	}

	var keywords []string
	for _, concept := range w.Concepts {
		if concept.DisplayName != "" {
			keywords = append(keywords, concept.DisplayName)
		}
	}

	var pageURL, journal string
	if w.PrimaryLocation != nil {
		pageURL = w.PrimaryLocation.LandingPageURL
		if w.PrimaryLocation.Source != nil {
			journal = w.PrimaryLocation.Source.DisplayName
		}
	}

	return ReferenceCandidate{
		ID:        w.ID,
		Title:     title,
		Authors:   authors,
		Abstract:  abstract,
		DOI:       doi,
		Year:      w.PublicationYear,
		Keywords:  keywords,
		Citations: w.CitedByCount,
		URL:       pageURL,
		Journal:   journal,
		Volume:    w.Biblio.Volume,
		Issue:     w.Biblio.Issue,
		FirstPage: w.Biblio.FirstPage,
		LastPage:  w.Biblio.LastPage,
		Links:     DownloadLinks(w),
		Partial:   abstract == "" || doi == "",
	}
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back
// to plain text. The inverted index maps each word to the positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}
