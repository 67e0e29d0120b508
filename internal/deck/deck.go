// Package deck groups the question bank by creator so examinees can
// browse and study whole decks authored by one contributor.
package deck

import (
	"strings"

	"github.com/google/uuid"

	"github.com/boardprep/review-platform/internal/question"
)

// Filter holds the active deck browser predicates. All are optional;
// empty values match everything.
type Filter struct {
	Search   string
	Module   string
	Category string
}

// Deck summarizes one creator's questions within the filtered set.
type Deck struct {
	CreatorID   uuid.UUID `json:"creator_id"`
	CreatorName string    `json:"creator_name"`
	Count       int       `json:"count"`
	Categories  []string  `json:"categories"`
	Module      string    `json:"module"`
}

// Apply returns the subset of questions matching every active
// predicate. Search text matches case-insensitively against the
// question text, the explanation, or the creator's display name; any
// single match qualifies.
func Apply(questions []question.Question, f Filter) []question.Question {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]question.Question, 0, len(questions))
	for _, q := range questions {
		if f.Module != "" && q.Module != f.Module {
			continue
		}
		if f.Category != "" && q.Category != f.Category {
			continue
		}
		if search != "" && !matchesSearch(q, search) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func matchesSearch(q question.Question, search string) bool {
	return strings.Contains(strings.ToLower(q.Prompt), search) ||
		strings.Contains(strings.ToLower(q.Explanation), search) ||
		strings.Contains(strings.ToLower(q.CreatorName), search)
}

// GroupByCreator folds the filtered questions into one deck per
// creator. Output order is the order of each creator's first
// appearance in the input; a deck's module comes from that first
// record and is not recomputed if a creator spans modules.
func GroupByCreator(questions []question.Question) []Deck {
	index := make(map[uuid.UUID]int, len(questions))
	seenCategories := make(map[uuid.UUID]map[string]struct{}, len(questions))
	decks := make([]Deck, 0)

	for _, q := range questions {
		i, ok := index[q.CreatorID]
		if !ok {
			i = len(decks)
			index[q.CreatorID] = i
			seenCategories[q.CreatorID] = make(map[string]struct{})
			decks = append(decks, Deck{
				CreatorID:   q.CreatorID,
				CreatorName: q.CreatorName,
				Module:      q.Module,
				Categories:  []string{},
			})
		}
		decks[i].Count++
		if q.Category != "" {
			if _, dup := seenCategories[q.CreatorID][q.Category]; !dup {
				seenCategories[q.CreatorID][q.Category] = struct{}{}
				decks[i].Categories = append(decks[i].Categories, q.Category)
			}
		}
	}
	return decks
}
