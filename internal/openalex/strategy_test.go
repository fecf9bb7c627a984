package openalex

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "github.com/scribelab/paperforge/internal/logger"
)

// scriptedSearcher records every query and serves canned results.
type scriptedSearcher struct {
	queries []string
	results map[string][]Work
	failOn  map[string]bool
}

func (s *scriptedSearcher) SearchWorks(_ context.Context, query string, _, _ int) ([]Work, error) {
	s.queries = append(s.queries, query)
	if s.failOn[query] {
		return nil, errors.New("simulated search failure")
	}
	return s.results[query], nil
}

func works(ids ...string) []Work {
	out := make([]Work, len(ids))
	for i, id := range ids {
		out[i] = Work{ID: id, Title: "work " + id}
	}
	return out
}

func TestCombinationIndexes(t *testing.T) {
	assert.Equal(t, [][]int{{0, 1, 2}}, combinationIndexes(3, 3))
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {1, 2}}, combinationIndexes(3, 2))
	assert.Equal(t, [][]int{{0}, {1}, {2}}, combinationIndexes(3, 1))
	assert.Nil(t, combinationIndexes(3, 0))
	assert.Nil(t, combinationIndexes(2, 3))
}

func TestCollectQueryOrderIsDeterministic(t *testing.T) {
	searcher := &scriptedSearcher{}
	collector := NewCollector(searcher, 40, applogger.New())

	collector.Collect(context.Background(), "My Title", []string{"a", "b", "c"})

	want := []string{
		"My Title",
		`"a" AND "b" AND "c"`,
		`"a" AND "b"`,
		`"a" AND "c"`,
		`"b" AND "c"`,
		`"a"`,
		`"b"`,
		`"c"`,
	}
	assert.Equal(t, want, searcher.queries,
		"title pass first, then combinations from most to least specific")
}

func TestCollectDeduplicates(t *testing.T) {
	searcher := &scriptedSearcher{
		results: map[string][]Work{
			"Title": works("W1", "W2", "W1"),
			`"a"`:   works("W2", "W3"),
		},
	}
	collector := NewCollector(searcher, 40, applogger.New())

	got := collector.Collect(context.Background(), "Title", []string{"a"})

	require.Len(t, got, 3)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"W1", "W2", "W3"}, ids)
}

func TestCollectStopsAtTarget(t *testing.T) {
	many := make([]Work, 30)
	for i := range many {
		many[i] = Work{ID: fmt.Sprintf("W%d", i)}
	}
	searcher := &scriptedSearcher{
		results: map[string][]Work{"Title": many},
	}
	collector := NewCollector(searcher, 10, applogger.New())

	got := collector.Collect(context.Background(), "Title", []string{"a", "b"})

	assert.Len(t, got, 10)
	// Target reached on the title pass, so no keyword queries are run.
	assert.Equal(t, []string{"Title"}, searcher.queries)
}

func TestCollectSkipsFailedQueries(t *testing.T) {
	searcher := &scriptedSearcher{
		results: map[string][]Work{
			`"b"`: works("W9"),
		},
		failOn: map[string]bool{
			"Title":        true,
			`"a" AND "b"`: true,
			`"a"`:         true,
		},
	}
	collector := NewCollector(searcher, 40, applogger.New())

	got := collector.Collect(context.Background(), "Title", []string{"a", "b"})

	require.Len(t, got, 1)
	assert.Equal(t, "W9", got[0].ID)
}

func TestCollectTotalFailureReturnsEmpty(t *testing.T) {
	searcher := &scriptedSearcher{
		failOn: map[string]bool{"Title": true, `"a"`: true},
	}
	collector := NewCollector(searcher, 40, applogger.New())

	got := collector.Collect(context.Background(), "Title", []string{"a"})
	assert.Empty(t, got)
}

func TestCollectSkipsWorksWithoutID(t *testing.T) {
	searcher := &scriptedSearcher{
		results: map[string][]Work{
			"Title": {{ID: ""}, {ID: "W1"}},
		},
	}
	collector := NewCollector(searcher, 40, applogger.New())

	got := collector.Collect(context.Background(), "Title", nil)
	require.Len(t, got, 1)
	assert.Equal(t, "W1", got[0].ID)
}
