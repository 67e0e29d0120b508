// Package leaderboard ranks contributors by rank points or by how many
// questions they have authored, and keeps the rankings cached and
// streamed to live viewers.
package leaderboard

import (
	"sort"

	"github.com/google/uuid"

	"github.com/boardprep/review-platform/internal/db/repository"
)

// Sort keys accepted by the leaderboard.
const (
	SortByPoints    = "points"
	SortByQuestions = "questions"
)

// ValidSortBy reports whether key names a supported sort order.
func ValidSortBy(key string) bool {
	return key == SortByPoints || key == SortByQuestions
}

// Entry is one ranked contributor.
type Entry struct {
	Rank          int       `json:"rank"`
	UserID        uuid.UUID `json:"user_id"`
	FullName      string    `json:"full_name"`
	SubRole       string    `json:"sub_role,omitempty"`
	Points        int       `json:"points"`
	QuestionCount int       `json:"question_count"`
}

// Merge joins the profile list with per-creator question counts.
// Profiles with zero points and zero questions are dropped; everyone
// else appears even if they only score on one of the two keys.
func Merge(profiles []repository.ProfileRow, counts map[uuid.UUID]int) []Entry {
	entries := make([]Entry, 0, len(profiles))
	for _, p := range profiles {
		count := counts[p.ID]
		if p.RankPoints == 0 && count == 0 {
			continue
		}
		entries = append(entries, Entry{
			UserID:        p.ID,
			FullName:      p.FullName,
			SubRole:       p.SubRole,
			Points:        p.RankPoints,
			QuestionCount: count,
		})
	}
	return entries
}

// Sort orders entries descending by the active key, tie-breaking on the
// other key also descending. The sort is stable so exact ties keep
// their input order between renders.
func Sort(entries []Entry, sortBy string) {
	primary := func(e Entry) int { return e.Points }
	secondary := func(e Entry) int { return e.QuestionCount }
	if sortBy == SortByQuestions {
		primary, secondary = secondary, primary
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if primary(entries[i]) != primary(entries[j]) {
			return primary(entries[i]) > primary(entries[j])
		}
		return secondary(entries[i]) > secondary(entries[j])
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// Podium returns the top three slots of a sorted ranking. Missing slots
// stay nil so the client renders them empty instead of erroring.
func Podium(entries []Entry) [3]*Entry {
	var podium [3]*Entry
	for i := 0; i < 3 && i < len(entries); i++ {
		e := entries[i]
		podium[i] = &e
	}
	return podium
}
