package search

import (
	"sort"
	"strconv"
	"strings"

	"juridico/api/internal/collection"
)

// Snapshotter provides a consistent copy of the in-memory data set.
type Snapshotter interface {
	Snapshot() collection.Data
}

// Local implements Searcher by scanning the in-memory collections. It is the
// fallback when Meilisearch is unreachable, so results favor predictability
// over relevance tuning: case-insensitive substring match, name and number
// fields ranked above the rest.
type Local struct {
	store Snapshotter
}

// NewLocal creates a snapshot-scanning searcher.
func NewLocal(store Snapshotter) *Local {
	return &Local{store: store}
}

// Healthy always returns true. The in-memory store is the source of truth;
// if it is gone, the whole service is gone.
func (l *Local) Healthy() bool {
	return true
}

type scoredResult struct {
	result Result
	score  int
}

// Search scans clients, processes, and documents for the query text.
func (l *Local) Search(q Query) ([]Result, int, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	if needle == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	data := l.store.Snapshot()
	var scored []scoredResult

	if q.FilterType == "" || q.FilterType == ResultClient {
		for _, client := range data.Clients {
			score := matchScore(needle,
				weighted{client.Name, 3},
				weighted{client.Document, 2},
				weighted{client.Email, 1},
				weighted{client.Phone, 1},
			)
			if score == 0 {
				continue
			}
			scored = append(scored, scoredResult{
				result: Result{
					Type:    ResultClient,
					ID:      strconv.Itoa(client.ID),
					Title:   client.Name,
					Snippet: client.Email,
					Status:  client.Status,
				},
				score: score,
			})
		}
	}

	if q.FilterType == "" || q.FilterType == ResultProcess {
		for _, process := range data.Processes {
			score := matchScore(needle,
				weighted{process.Number, 3},
				weighted{process.Client, 2},
				weighted{process.OpposingParty, 1},
				weighted{process.Responsible, 1},
			)
			if score == 0 {
				continue
			}
			scored = append(scored, scoredResult{
				result: Result{
					Type:    ResultProcess,
					ID:      strconv.Itoa(process.ID),
					Title:   process.Number,
					Snippet: process.Client,
					Status:  process.Status,
				},
				score: score,
			})
		}
	}

	if q.FilterType == "" || q.FilterType == ResultDocument {
		for _, document := range data.Documents {
			score := matchScore(needle, weighted{document.Name, 3})
			if score == 0 {
				continue
			}
			scored = append(scored, scoredResult{
				result: Result{
					Type:    ResultDocument,
					ID:      strconv.Itoa(document.ID),
					Title:   document.Name,
					Snippet: document.Date,
				},
				score: score,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	total := len(scored)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	results := make([]Result, 0, end-offset)
	for _, sr := range scored[offset:end] {
		results = append(results, sr.result)
	}
	return results, total, nil
}

type weighted struct {
	value  string
	weight int
}

func matchScore(needle string, fields ...weighted) int {
	score := 0
	for _, field := range fields {
		haystack := strings.ToLower(field.value)
		if haystack == "" || !strings.Contains(haystack, needle) {
			continue
		}
		score += field.weight
		if strings.HasPrefix(haystack, needle) {
			score += field.weight
		}
	}
	return score
}
