package openalex

import (
	"context"
	"fmt"
	"strings"

	applogger "github.com/scribelab/paperforge/internal/logger"
)

// DefaultTargetPaperCount caps how many unique candidates one
// collection run gathers.
const DefaultTargetPaperCount = 40

const defaultPerPage = 25

// WorksSearcher is the slice of Client the collector needs.
type WorksSearcher interface {
	SearchWorks(ctx context.Context, query string, page, perPage int) ([]Work, error)
}

// Collector assembles reference candidates for a paper title and
// keyword set using a hierarchical search strategy: one title pass
// first, then keyword combinations from most to least specific.
type Collector struct {
	client  WorksSearcher
	target  int
	perPage int
	logger  *applogger.AppLogger
}

func NewCollector(client WorksSearcher, target int, logger *applogger.AppLogger) *Collector {
	if target <= 0 {
		target = DefaultTargetPaperCount
	}
	return &Collector{
		client:  client,
		target:  target,
		perPage: defaultPerPage,
		logger:  logger,
	}
}

// Collect gathers up to the target number of unique candidates, deduped
// by OpenAlex work ID. A failed query is logged and skipped; total
// failure yields an empty slice, never an error.
func (c *Collector) Collect(ctx context.Context, title string, keywords []string) []ReferenceCandidate {
	var candidates []ReferenceCandidate
	seen := make(map[string]bool)

	absorb := func(works []Work) {
		for _, work := range works {
			if len(candidates) >= c.target {
				return
			}
			if work.ID == "" || seen[work.ID] {
				continue
			}
			seen[work.ID] = true
			candidates = append(candidates, ExtractCandidate(work))
		}
	}

	// Title match is the highest-precision signal.
	if title != "" {
		works, err := c.client.SearchWorks(ctx, title, 1, c.perPage)
		if err != nil {
			c.logger.Warn("title search failed, continuing with keywords", "title", title, "error", err)
		} else {
			absorb(works)
		}
	}

	// Keyword combinations, most specific first. Narrower conjunctions
	// are assumed more relevant than broad single-keyword queries.
	for required := len(keywords); required >= 1 && len(candidates) < c.target; required-- {
		for _, combo := range combinationIndexes(len(keywords), required) {
			if len(candidates) >= c.target {
				break
			}
			query := buildConjunctiveQuery(keywords, combo)
			works, err := c.client.SearchWorks(ctx, query, 1, c.perPage)
			if err != nil {
				c.logger.Warn("keyword search failed, skipping combination", "query", query, "error", err)
				continue
			}
			absorb(works)
		}
	}

	c.logger.Info("reference collection finished", "title", title, "candidates", len(candidates))
	return candidates
}

// buildConjunctiveQuery quotes each chosen keyword and joins them with
// AND, e.g. "machine learning" AND "genomics".
func buildConjunctiveQuery(keywords []string, indexes []int) string {
	parts := make([]string, len(indexes))
	for i, idx := range indexes {
		parts[i] = fmt.Sprintf("%q", keywords[idx])
	}
	return strings.Join(parts, " AND ")
}

// combinationIndexes enumerates every k-combination of {0..n-1} in
// lexicographic index order, so query order is deterministic.
func combinationIndexes(n, k int) [][]int {
	if k <= 0 || k > n {
		return nil
	}

	var result [][]int
	combo := make([]int, k)
	for i := range combo {
		combo[i] = i
	}
	for {
		result = append(result, append([]int(nil), combo...))

		// Advance to the next combination.
		i := k - 1
		for i >= 0 && combo[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}
		combo[i]++
		for j := i + 1; j < k; j++ {
			combo[j] = combo[j-1] + 1
		}
	}
	return result
}
