package leaderboard

import ws "github.com/boardprep/review-platform/pkg/http/ws"

func toWSEntries(entries []Entry) []ws.LeaderboardEntry {
	out := make([]ws.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, ws.LeaderboardEntry{
			Rank:          e.Rank,
			UserID:        e.UserID.String(),
			FullName:      e.FullName,
			SubRole:       e.SubRole,
			Points:        e.Points,
			QuestionCount: e.QuestionCount,
		})
	}
	return out
}
