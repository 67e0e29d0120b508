// Package session implements the quiz session engine: one question at a
// time, answers locked once recorded, scoring derived from the answer
// sheet, and ranked completion side effects applied exactly once.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/boardprep/review-platform/internal/session/scoring"
)

// Unanswered marks an answer slot with no recorded choice.
const Unanswered = -1

// Phase is the lifecycle stage of a session.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseScrolling  Phase = "scrolling"
	PhaseCompleted  Phase = "completed"
)

// Mode selects the feedback and reward behavior of a session.
type Mode string

const (
	// ModeNormal reveals correctness per question and awards no points.
	ModeNormal Mode = "normal"
	// ModeRanked defers all feedback to completion and awards rank points.
	ModeRanked Mode = "ranked"
)

// State transition errors.
var (
	ErrQuestionUnanswered = errors.New("current question must be answered before advancing")
	ErrAnswerLocked       = errors.New("answer already recorded for this question")
	ErrChoiceOutOfRange   = errors.New("choice index must be between 0 and 3")
	ErrSessionCompleted   = errors.New("session already completed")
	ErrNotInteractive     = errors.New("session is not interactive")
)

// Item is one question as held inside a session. CorrectAnswer and
// Explanation stay server side until the mode and phase permit reveal.
type Item struct {
	ID            uuid.UUID `json:"id"`
	Prompt        string    `json:"prompt"`
	Choices       [4]string `json:"choices"`
	CorrectAnswer int       `json:"correct_answer"`
	Explanation   string    `json:"explanation"`
	Category      string    `json:"category"`
}

// Session is the full server-side state of one quiz attempt. It is
// serialized to the session store between requests; all transitions are
// methods on the in-memory value and the caller persists afterwards.
type Session struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Module       string    `json:"module"`
	Category     string    `json:"category,omitempty"`
	Mode         Mode      `json:"mode"`
	Phase        Phase     `json:"phase"`
	Questions    []Item    `json:"questions"`
	Answers      []int     `json:"answers"`
	CurrentIndex int       `json:"current_index"`
	ResultsSaved bool      `json:"results_saved"`
	PointsEarned int       `json:"points_earned"`
	CreatedAt    time.Time `json:"created_at"`
}

// New builds an in-progress session over the given question set, with
// every answer slot unanswered and the cursor at the first question.
func New(userID uuid.UUID, module, category string, mode Mode, questions []Item) *Session {
	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = Unanswered
	}
	return &Session{
		ID:           uuid.New(),
		UserID:       userID,
		Module:       module,
		Category:     category,
		Mode:         mode,
		Phase:        PhaseInProgress,
		Questions:    questions,
		Answers:      answers,
		CurrentIndex: 0,
		CreatedAt:    time.Now().UTC(),
	}
}

// NewScrolling builds a read-only session: every question is visible at
// once, nothing is answered or scored.
func NewScrolling(userID uuid.UUID, module, category string, questions []Item) *Session {
	s := New(userID, module, category, ModeNormal, questions)
	s.Phase = PhaseScrolling
	return s
}

// Record stores the choice for the current question. The slot locks on
// first write in both modes; a second selection is refused.
func (s *Session) Record(choice int) error {
	switch s.Phase {
	case PhaseCompleted:
		return ErrSessionCompleted
	case PhaseScrolling:
		return ErrNotInteractive
	}
	if choice < 0 || choice > 3 {
		return ErrChoiceOutOfRange
	}
	if s.Answers[s.CurrentIndex] != Unanswered {
		return ErrAnswerLocked
	}
	s.Answers[s.CurrentIndex] = choice
	return nil
}

// Advance moves to the next question, or completes the session when the
// cursor is already on the last one. Refused while the current question
// is unanswered.
func (s *Session) Advance() error {
	switch s.Phase {
	case PhaseCompleted:
		return ErrSessionCompleted
	case PhaseScrolling:
		return ErrNotInteractive
	}
	if s.Answers[s.CurrentIndex] == Unanswered {
		return ErrQuestionUnanswered
	}
	if s.CurrentIndex == len(s.Questions)-1 {
		s.Phase = PhaseCompleted
		return nil
	}
	s.CurrentIndex++
	return nil
}

// Retreat moves the cursor back one question. No-op at the first
// question; the answer recorded at the index being left is retained.
func (s *Session) Retreat() error {
	switch s.Phase {
	case PhaseCompleted:
		return ErrSessionCompleted
	case PhaseScrolling:
		return ErrNotInteractive
	}
	if s.CurrentIndex > 0 {
		s.CurrentIndex--
	}
	return nil
}

// Score counts correct answers. Recomputed from the answer sheet, never
// stored separately.
func (s *Session) Score() int {
	score := 0
	for i, q := range s.Questions {
		if s.Answers[i] == q.CorrectAnswer {
			score++
		}
	}
	return score
}

// Percentage returns the score as a rounded percentage of the total.
func (s *Session) Percentage() int {
	return scoring.Percentage(s.Score(), len(s.Questions))
}

// QuestionIDs returns the identifiers of every question in the session,
// in presentation order.
func (s *Session) QuestionIDs() []string {
	ids := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID.String()
	}
	return ids
}

// revealAnswers reports whether correct answers and explanations may be
// shown for the slot at index i. Normal mode reveals a question as soon
// as it is answered; ranked mode reveals nothing until completion.
// Scrolling sessions are study material and always reveal.
func (s *Session) revealAnswers(i int) bool {
	switch s.Phase {
	case PhaseCompleted, PhaseScrolling:
		return true
	}
	return s.Mode == ModeNormal && s.Answers[i] != Unanswered
}
