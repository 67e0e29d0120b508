package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_sessions_started_total",
		Help: "Quiz sessions started, by mode and module.",
	}, []string{"mode", "module"})

	sessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_sessions_completed_total",
		Help: "Quiz sessions completed, by mode and module.",
	}, []string{"mode", "module"})

	sessionsAbandoned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_sessions_abandoned_total",
		Help: "Quiz sessions abandoned before completion, by mode.",
	}, []string{"mode"})

	answersRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_answers_recorded_total",
		Help: "Answers recorded across all sessions, by mode.",
	}, []string{"mode"})

	rankedPointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_ranked_points_awarded_total",
		Help: "Rank points awarded at ranked completion, by module.",
	}, []string{"module"})
)
