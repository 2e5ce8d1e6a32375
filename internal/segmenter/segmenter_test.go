package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_BoundaryExample(t *testing.T) {
	s := New()

	blocks := s.Segment("1. What is 2+2?\nA. 3\nB. 4\n2. Next question...")

	require.Len(t, blocks, 2)
	assert.Equal(t, 1, blocks[0].Number)
	assert.Equal(t, "What is 2+2?\nA. 3\nB. 4", blocks[0].Text)
	assert.NotContains(t, blocks[0].Text, "Next question")
	assert.Equal(t, 0, blocks[0].Start)
	assert.Equal(t, "dot", blocks[0].Strategy)
	assert.Equal(t, 2, blocks[1].Number)
	assert.Equal(t, "Next question...", blocks[1].Text)
}

func TestSegment_QuestionStrategy(t *testing.T) {
	s := New()

	blocks := s.Segment("QUESTION 1: Define photosynthesis clearly.\nQUESTION 2: Explain osmosis in plants.")

	require.Len(t, blocks, 2)
	assert.Equal(t, "question", blocks[0].Strategy)
	assert.Equal(t, 1, blocks[0].Number)
	assert.Equal(t, "Define photosynthesis clearly.", blocks[0].Text)
	assert.Equal(t, 2, blocks[1].Number)
	assert.Equal(t, "Explain osmosis in plants.", blocks[1].Text)
}

func TestSegment_ShortQuestionMarker(t *testing.T) {
	blocks := New().Segment("Q1 Name three noble gases.\nQ2 State Boyle's law precisely.")

	require.Len(t, blocks, 2)
	assert.Equal(t, "Name three noble gases.", blocks[0].Text)
	assert.Equal(t, 2, blocks[1].Number)
}

func TestSegment_ParenStrategy(t *testing.T) {
	blocks := New().Segment("1) Define photosynthesis clearly.\n2) Explain osmosis in plants.")

	require.Len(t, blocks, 2)
	assert.Equal(t, "paren", blocks[0].Strategy)
	assert.Equal(t, "Define photosynthesis clearly.", blocks[0].Text)
	assert.Equal(t, "Explain osmosis in plants.", blocks[1].Text)
}

func TestSegment_FirstMatchingStrategyWinsEvenWhenEmpty(t *testing.T) {
	text := "QUESTION 1: What is the capital of Nigeria?\n5. ok"

	// The dot marker "5." matches but its body is too short.
	blocks := New().Segment(text)
	assert.Empty(t, blocks)

	// The question strategy alone would have produced a block.
	matched, qBlocks := QuestionStrategy().Match(Clean(text))
	assert.True(t, matched)
	assert.Len(t, qBlocks, 1)
}

func TestSegment_NoMarkers(t *testing.T) {
	assert.Empty(t, New().Segment("This page only has navigation links and a copyright notice."))
	assert.Empty(t, New().Segment(""))
}

func TestSegment_FiltersShortBodiesAndZero(t *testing.T) {
	text := "0. This is the zeroth item here\n1. Too short\n2. hi\n3. This body is long enough"

	blocks := New().Segment(text)

	require.Len(t, blocks, 1)
	assert.Equal(t, 3, blocks[0].Number)
	assert.Equal(t, "This body is long enough", blocks[0].Text)
}

func TestSegment_DecimalIsNotAMarker(t *testing.T) {
	text := "1. A car travels\n2.5 km in an hour. Find its speed.\n2. Next question body here"

	blocks := New().Segment(text)

	require.Len(t, blocks, 2)
	assert.Equal(t, "A car travels\n2.5 km in an hour. Find its speed.", blocks[0].Text)
	assert.Equal(t, 2, blocks[1].Number)
}

func TestSegment_BannerEndsBody(t *testing.T) {
	text := "1. Define the term osmosis fully.\nQuestions 5-10\nRead the passage below and answer."

	blocks := New().Segment(text)

	require.Len(t, blocks, 1)
	assert.Equal(t, "Define the term osmosis fully.", blocks[0].Text)
}

func TestMarkerStrategy_SectionBannerEndsBody(t *testing.T) {
	matched, blocks := DotStrategy().Match("1. Define the term osmosis fully.\nSECTION II\nAnswer any three questions.")

	assert.True(t, matched)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Define the term osmosis fully.", blocks[0].Text)
}

func TestMarkerStrategy_NoMatch(t *testing.T) {
	matched, blocks := ParenStrategy().Match("1. Define osmosis in plants.")

	assert.False(t, matched)
	assert.Nil(t, blocks)
}

func TestWithStrategies(t *testing.T) {
	s := New(WithStrategies(ParenStrategy()))

	blocks := s.Segment("1. Define photosynthesis clearly.\n2) Explain osmosis in plants.")

	require.Len(t, blocks, 1)
	assert.Equal(t, 2, blocks[0].Number)
	assert.Equal(t, "paren", blocks[0].Strategy)
}

func TestDefaultStrategies_Order(t *testing.T) {
	strategies := DefaultStrategies()

	require.Len(t, strategies, 3)
	assert.Equal(t, "dot", strategies[0].Name())
	assert.Equal(t, "question", strategies[1].Name())
	assert.Equal(t, "paren", strategies[2].Name())
}
