package deck

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/boardprep/review-platform/internal/question"
)

func q(creator uuid.UUID, name, prompt, explanation, module, category string) question.Question {
	return question.Question{
		ID:          uuid.New(),
		Prompt:      prompt,
		Explanation: explanation,
		Category:    category,
		Module:      module,
		CreatorID:   creator,
		CreatorName: name,
	}
}

func TestApplySearchMatchesAnyField(t *testing.T) {
	creator := uuid.New()
	questions := []question.Question{
		q(creator, "Dr. Reyes", "What is classical conditioning?", "", "psychology", "learning"),
		q(creator, "Dr. Reyes", "Define reinforcement.", "Operant conditioning concept", "psychology", "learning"),
		q(creator, "Nurse Cruz", "Normal adult heart rate?", "", "nursing", "vitals"),
	}

	// matches the question text
	assert.Len(t, Apply(questions, Filter{Search: "classical"}), 1)
	// matches the explanation
	assert.Len(t, Apply(questions, Filter{Search: "operant"}), 1)
	// matches the creator name, case-insensitively
	assert.Len(t, Apply(questions, Filter{Search: "cruz"}), 1)
	// no match
	assert.Empty(t, Apply(questions, Filter{Search: "pharmacology"}))
}

func TestApplyModuleAndCategoryFilters(t *testing.T) {
	creator := uuid.New()
	questions := []question.Question{
		q(creator, "A", "p1", "", "psychology", "learning"),
		q(creator, "A", "p2", "", "psychology", "memory"),
		q(creator, "A", "p3", "", "nursing", "vitals"),
	}

	assert.Len(t, Apply(questions, Filter{Module: "psychology"}), 2)
	assert.Len(t, Apply(questions, Filter{Module: "psychology", Category: "memory"}), 1)
}

func TestGroupByCreatorPreservesFirstAppearanceOrder(t *testing.T) {
	creatorA := uuid.New()
	creatorB := uuid.New()
	questions := []question.Question{
		q(creatorA, "Ana", "p1", "", "psychology", "X"),
		q(creatorA, "Ana", "p2", "", "psychology", "Y"),
		q(creatorB, "Ben", "p3", "", "nursing", "Z"),
		q(creatorA, "Ana", "p4", "", "psychology", "X"),
	}

	decks := GroupByCreator(questions)
	assert.Len(t, decks, 2)

	assert.Equal(t, creatorA, decks[0].CreatorID)
	assert.Equal(t, 3, decks[0].Count)
	assert.Equal(t, []string{"X", "Y"}, decks[0].Categories)
	assert.Equal(t, "psychology", decks[0].Module)

	assert.Equal(t, creatorB, decks[1].CreatorID)
	assert.Equal(t, 1, decks[1].Count)
	assert.Equal(t, []string{"Z"}, decks[1].Categories)
}

func TestGroupByCreatorModuleFromFirstRecord(t *testing.T) {
	creator := uuid.New()
	questions := []question.Question{
		q(creator, "Mixed", "p1", "", "nursing", ""),
		q(creator, "Mixed", "p2", "", "psychology", ""),
	}

	decks := GroupByCreator(questions)
	assert.Len(t, decks, 1)
	assert.Equal(t, "nursing", decks[0].Module)
}

func TestGroupByCreatorEmptyInput(t *testing.T) {
	assert.Empty(t, GroupByCreator(nil))
}
