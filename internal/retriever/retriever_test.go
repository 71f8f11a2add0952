package retriever

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/manualqa/internal/model"
)

func chunk(filename string, position int, text string) model.Chunk {
	return model.Chunk{Filename: filename, Position: position, Text: text}
}

func manualChunks() []model.Chunk {
	return []model.Chunk{
		chunk("manual.txt", 0, "Safety: always disconnect mains power before servicing the conveyor."),
		chunk("manual.txt", 1, "Maintenance schedule: replace the motor belt every 500 hours of operation."),
		chunk("manual.txt", 2, "Lubricate the bearings monthly with approved grease."),
	}
}

func TestRetrieveMotorBeltScenario(t *testing.T) {
	r := New()
	res := r.Retrieve("when should I replace the motor belt", manualChunks(), 3)
	require.NotZero(t, res.Len())
	require.Equal(t, 1, res.Items[0].Chunk.Position)
	require.Equal(t, "manual.txt", res.Items[0].Chunk.Filename)
	require.Greater(t, res.Items[0].Score, 0.0)
	for _, item := range res.Items {
		require.Greater(t, item.Score, 0.0)
	}
}

func TestRetrieveExcludesZeroScores(t *testing.T) {
	r := New()
	res := r.Retrieve("bearings grease", manualChunks(), 10)
	require.Equal(t, 1, res.Len())
	require.Equal(t, 2, res.Items[0].Chunk.Position)
}

func TestRetrieveEmptyInputs(t *testing.T) {
	r := New()
	require.Zero(t, r.Retrieve("motor belt", nil, 3).Len())
	require.Zero(t, r.Retrieve("", manualChunks(), 3).Len())
	require.Zero(t, r.Retrieve("the and of", manualChunks(), 3).Len())
	require.Zero(t, r.Retrieve("motor belt", manualChunks(), 0).Len())
	require.Zero(t, r.Retrieve("hydraulic pump", manualChunks(), 3).Len())
}

func TestRetrieveRespectsK(t *testing.T) {
	chunks := []model.Chunk{
		chunk("a.txt", 0, "belt tension"),
		chunk("a.txt", 1, "belt wear"),
		chunk("b.txt", 0, "belt alignment"),
		chunk("c.txt", 0, "belt cover"),
	}
	res := New().Retrieve("belt", chunks, 2)
	require.Equal(t, 2, res.Len())
}

func TestRetrieveTieBreakOrdering(t *testing.T) {
	chunks := []model.Chunk{
		chunk("b.txt", 0, "motor belt"),
		chunk("a.txt", 3, "motor belt"),
		chunk("a.txt", 1, "motor belt"),
		chunk("c.txt", 0, "unrelated text"),
	}
	res := New().Retrieve("motor belt", chunks, 10)
	require.Equal(t, 3, res.Len())
	require.Equal(t, "a.txt", res.Items[0].Chunk.Filename)
	require.Equal(t, 1, res.Items[0].Chunk.Position)
	require.Equal(t, "a.txt", res.Items[1].Chunk.Filename)
	require.Equal(t, 3, res.Items[1].Chunk.Position)
	require.Equal(t, "b.txt", res.Items[2].Chunk.Filename)
	require.Equal(t, res.Items[0].Score, res.Items[2].Score)
}

func TestRetrievePhraseBonus(t *testing.T) {
	chunks := []model.Chunk{
		chunk("a.txt", 0, "belt for the motor housing"),
		chunk("b.txt", 0, "motor belt inspection"),
	}
	res := New().Retrieve("motor belt", chunks, 2)
	require.Equal(t, 2, res.Len())
	require.Equal(t, "b.txt", res.Items[0].Chunk.Filename)
	require.Greater(t, res.Items[0].Score, res.Items[1].Score)

	flat := New(WithPhraseWeight(0)).Retrieve("motor belt", chunks, 2)
	require.Equal(t, flat.Items[0].Score, flat.Items[1].Score)
	require.Equal(t, "a.txt", flat.Items[0].Chunk.Filename)
}

func TestRetrieveRareTermsWeighMore(t *testing.T) {
	chunks := []model.Chunk{
		chunk("a.txt", 0, "check the pump"),
		chunk("a.txt", 1, "check the filter"),
		chunk("a.txt", 2, "check the valve"),
		chunk("a.txt", 3, "the gasket"),
	}
	res := New().Retrieve("check gasket", chunks, 4)
	require.Equal(t, 4, res.Len())
	require.Equal(t, 3, res.Items[0].Chunk.Position)
}

func TestRetrieveIdempotentAndDeduplicated(t *testing.T) {
	chunks := append(manualChunks(), manualChunks()...)
	r := New()
	first := r.Retrieve("motor belt hours", chunks, 5)
	second := r.Retrieve("motor belt hours", chunks, 5)
	require.Equal(t, first, second)
	seen := map[int]bool{}
	for _, item := range first.Items {
		require.False(t, seen[item.Chunk.Position])
		seen[item.Chunk.Position] = true
	}
}

func TestTermsTokenization(t *testing.T) {
	r := New()
	require.Equal(t, []string{"replace", "motor", "belt", "every", "500", "hours", "operator's"},
		r.terms("Replace the MOTOR-belt every 500 hours; operator's"))
}
