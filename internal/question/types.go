package question

import (
	"time"

	"github.com/google/uuid"
)

// Exam modules (licensure tracks).
const (
	ModulePsychology = "psychology"
	ModuleNursing    = "nursing"
)

// QuizSizes are the item counts offered on the quiz select screen.
var QuizSizes = []int{10, 20, 50, 70, 100, 120}

// ValidModule reports whether m names a known exam track.
func ValidModule(m string) bool {
	return m == ModulePsychology || m == ModuleNursing
}

// Question is one multiple-choice item. Choices are positional: index 0-3
// map to labels A-D and CorrectAnswer indexes into them.
type Question struct {
	ID            uuid.UUID `json:"id"`
	Prompt        string    `json:"question"`
	Choices       [4]string `json:"choices"`
	CorrectAnswer int       `json:"correct_answer"`
	Explanation   string    `json:"explanation,omitempty"`
	Category      string    `json:"category"`
	Module        string    `json:"module"`
	CreatorID     uuid.UUID `json:"creator_id"`
	CreatorName   string    `json:"creator_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateRequest carries the fields for a new or edited question.
type CreateRequest struct {
	Prompt        string    `json:"question"`
	Choices       [4]string `json:"choices"`
	CorrectAnswer int       `json:"correct_answer"`
	Explanation   string    `json:"explanation"`
	Category      string    `json:"category"`
	Module        string    `json:"module"`
}

// SizeOption is one entry of the quiz-size selector, flagged unavailable
// when the filtered bank is too small.
type SizeOption struct {
	Size      int  `json:"size"`
	Available bool `json:"available"`
}

// Availability describes what the select screen can offer for a filter.
type Availability struct {
	Module   string       `json:"module"`
	Category string       `json:"category,omitempty"`
	Total    int          `json:"total"`
	Sizes    []SizeOption `json:"sizes"`
}
