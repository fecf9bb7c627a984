package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPA(t *testing.T) {
	w := Work{
		Title:     "Deep Learning for Protein Folding",
		Authors:   []string{"A. Researcher", "B. Scientist"},
		Year:      2021,
		Journal:   "Nature Methods",
		Volume:    "18",
		Issue:     "4",
		FirstPage: "120",
		LastPage:  "131",
		DOI:       "10.1000/xyz123",
	}

	got := APA(w)
	assert.Equal(t, "A. Researcher, B. Scientist (2021). Deep Learning for Protein Folding. Nature Methods, 18(4), 120-131. https://doi.org/10.1000/xyz123", got)
}

func TestAPAMissingFields(t *testing.T) {
	got := APA(Work{})
	assert.Contains(t, got, "Anonymous")
	assert.Contains(t, got, "n.d.")
	assert.Contains(t, got, "No title")
	// No DOI means the citation just ends with a period.
	assert.NotContains(t, got, "doi.org")
}

func TestMLA(t *testing.T) {
	w := Work{
		Title:   "Graph Neural Networks",
		Authors: []string{"C. Author"},
		Year:    2019,
		Journal: "JMLR",
		Volume:  "20",
		Issue:   "3",
	}

	got := MLA(w)
	assert.Contains(t, got, "C. Author.")
	assert.Contains(t, got, "Graph Neural Networks")
	assert.Contains(t, got, "vol. 20")
	assert.Contains(t, got, "no. 3")
	assert.Contains(t, got, "2019")
}

func TestIEEE(t *testing.T) {
	w := Work{
		Title:     "Edge Computing Survey",
		Authors:   []string{"D. Writer"},
		Year:      2020,
		Journal:   "IEEE Access",
		Volume:    "8",
		FirstPage: "1",
		LastPage:  "20",
		DOI:       "10.1109/a.b",
	}

	got := IEEE(w, 7)
	require.Contains(t, got, "[7]")
	assert.Contains(t, got, "in IEEE Access")
	assert.Contains(t, got, "vol. 8")
	assert.Contains(t, got, "pp. 1-20")
	assert.Contains(t, got, "doi: 10.1109/a.b")
}

func TestFormatDispatch(t *testing.T) {
	w := Work{Title: "T", Authors: []string{"A. One"}, Year: 2020}

	assert.Equal(t, APA(w), Format("apa", w, 1))
	assert.Equal(t, MLA(w), Format("MLA", w, 1))
	assert.Equal(t, IEEE(w, 3), Format("ieee", w, 3))
	// Unknown styles fall back to APA.
	assert.Equal(t, APA(w), Format("chicago", w, 1))
}

func TestReferenceLine(t *testing.T) {
	got := ReferenceLine([]string{"A. One", "B. Two"}, 2022, "Some Title", "10.1/abc")
	assert.Equal(t, "A. One, B. Two (2022). Some Title. DOI: 10.1/abc", got)

	// Unknown year and missing DOI degrade instead of failing.
	got = ReferenceLine(nil, 0, "Other Title", "")
	assert.Equal(t, "Anonymous (n.d.). Other Title.", got)
}
