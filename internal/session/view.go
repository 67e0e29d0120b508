package session

import (
	"time"

	"github.com/google/uuid"
)

// QuestionView is one question as exposed to the client. CorrectAnswer
// and Explanation are nil/empty until the session's mode and phase
// permit reveal, so a ranked attempt cannot read correctness mid-run.
type QuestionView struct {
	Index         int       `json:"index"`
	ID            uuid.UUID `json:"id"`
	Prompt        string    `json:"question"`
	Choices       [4]string `json:"choices"`
	Category      string    `json:"category,omitempty"`
	Answer        *int      `json:"answer,omitempty"`
	CorrectAnswer *int      `json:"correct_answer,omitempty"`
	Explanation   string    `json:"explanation,omitempty"`
}

// Result summarizes a completed session.
type Result struct {
	Score        int  `json:"score"`
	Total        int  `json:"total"`
	Percentage   int  `json:"percentage"`
	PointsEarned int  `json:"points_earned"`
	Perfect      bool `json:"perfect"`
}

// View is the client-facing snapshot of a session.
type View struct {
	ID           uuid.UUID      `json:"id"`
	Module       string         `json:"module"`
	Category     string         `json:"category,omitempty"`
	Mode         Mode           `json:"mode"`
	Phase        Phase          `json:"phase"`
	CurrentIndex int            `json:"current_index"`
	Total        int            `json:"total"`
	Answered     int            `json:"answered"`
	Questions    []QuestionView `json:"questions"`
	Result       *Result        `json:"result,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (s *Service) buildView(sess *Session) *View {
	questions := make([]QuestionView, len(sess.Questions))
	answered := 0
	for i, q := range sess.Questions {
		qv := QuestionView{
			Index:    i,
			ID:       q.ID,
			Prompt:   q.Prompt,
			Choices:  q.Choices,
			Category: q.Category,
		}
		if sess.Answers[i] != Unanswered {
			answered++
			answer := sess.Answers[i]
			qv.Answer = &answer
		}
		if sess.revealAnswers(i) {
			correct := q.CorrectAnswer
			qv.CorrectAnswer = &correct
			qv.Explanation = q.Explanation
		}
		questions[i] = qv
	}

	view := &View{
		ID:           sess.ID,
		Module:       sess.Module,
		Category:     sess.Category,
		Mode:         sess.Mode,
		Phase:        sess.Phase,
		CurrentIndex: sess.CurrentIndex,
		Total:        len(sess.Questions),
		Answered:     answered,
		Questions:    questions,
		CreatedAt:    sess.CreatedAt,
	}

	if sess.Phase == PhaseCompleted {
		score := sess.Score()
		total := len(sess.Questions)
		view.Result = &Result{
			Score:        score,
			Total:        total,
			Percentage:   sess.Percentage(),
			PointsEarned: sess.PointsEarned,
			Perfect:      total > 0 && score == total,
		}
	}
	return view
}
