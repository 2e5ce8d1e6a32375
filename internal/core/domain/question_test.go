package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionType_IsValid(t *testing.T) {
	for _, qt := range []QuestionType{
		QuestionTypeMultipleChoice,
		QuestionTypeCalculation,
		QuestionTypeEssay,
		QuestionTypeTrueFalse,
		QuestionTypeShortAnswer,
	} {
		assert.True(t, qt.IsValid(), qt.String())
	}
	assert.False(t, QuestionType("matching").IsValid())
}

func TestQuestionID(t *testing.T) {
	source := "https://example.com/waec-2012-maths"

	t.Run("same inputs give same id", func(t *testing.T) {
		assert.Equal(t,
			QuestionID(source, 3, "Simplify 2x + 3x"),
			QuestionID(source, 3, "Simplify 2x + 3x"))
	})

	t.Run("different stem gives different id", func(t *testing.T) {
		assert.NotEqual(t,
			QuestionID(source, 3, "Simplify 2x + 3x"),
			QuestionID(source, 3, "Simplify 4x - x"))
	})

	t.Run("different source gives different id", func(t *testing.T) {
		assert.NotEqual(t,
			QuestionID(source, 3, "Simplify 2x + 3x"),
			QuestionID("other.pdf#page=1", 3, "Simplify 2x + 3x"))
	})

	t.Run("is 32 hex characters", func(t *testing.T) {
		assert.Len(t, QuestionID(source, 1, "stem"), 32)
	})
}

func TestQuestion_EmbeddingText(t *testing.T) {
	t.Run("stem only", func(t *testing.T) {
		q := Question{Stem: "Define osmosis."}
		assert.Equal(t, "Define osmosis.", q.EmbeddingText())
	})

	t.Run("stem with options", func(t *testing.T) {
		q := Question{
			Stem: "What is 2+2?",
			Options: []QuestionOption{
				{Letter: "A", Text: "3"},
				{Letter: "B", Text: "4"},
			},
		}
		assert.Equal(t, "What is 2+2?\nA) 3\nB) 4", q.EmbeddingText())
	})
}
