package psychology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPair_IdenticalPartners(t *testing.T) {
	pair := NewPair(mixedMatrix, mixedMatrix)

	assert.Equal(t, 1.0, pair.PartnerAcceptance())
	assert.Equal(t, 1.0, pair.Understanding())
	assert.Equal(t, 1.0, pair.LifeAttitudes())
	assert.Equal(t, 1.0, pair.SimilarityThinking())
	assert.Equal(t, []int{6}, pair.Complementarity())
	assert.Equal(t, [2]float64{1, 1}, pair.PsyMaturity())
	attraction := pair.Attraction()
	assert.InDelta(t, 2.12/10.61, attraction[0], 1e-12)
	assert.InDelta(t, 2.12/10.61, attraction[1], 1e-12)
	assert.Equal(t, pair.Partner1(), pair.Partner2())
	assert.Equal(t, pair.LeadSegment1(), pair.LeadSegment2())
}

func TestPair_DifferentPartners(t *testing.T) {
	pair := NewPair(mixedMatrix, leftTwinMatrix)

	assert.Equal(t, 5.0/6.0, pair.PartnerAcceptance())
	assert.Equal(t, 0.25, pair.Understanding())
	attraction := pair.Attraction()
	assert.Equal(t, 0.0, attraction[0])
	assert.InDelta(t, 1.41/8.84, attraction[1], 1e-12)
	assert.Equal(t, 0.0, pair.LifeAttitudes())
	assert.Equal(t, 0.0, pair.SimilarityThinking())
	assert.Equal(t, [2]float64{1, 0.25}, pair.PsyMaturity())
	assert.Equal(t, []int{6, 0}, pair.Complementarity())

	assert.Equal(t, "b1", pair.LeadSegment1().Code)
	assert.Equal(t, "A1", pair.LeadSegment2().Code)
	assert.Equal(t, PersonProfile(leftTwinMatrix), pair.Profile2())
	assert.Equal(t, PersonPortrait(PersonProfile(mixedMatrix)), pair.Portrait1())
}

func TestPair_CodeSimilarity(t *testing.T) {
	tests := []struct {
		name            string
		other           Matrix
		lifeAttitudes   float64
		similarity      float64
		complementarity []int
	}{
		{name: "same code", other: innovatorMatrix, lifeAttitudes: 1, similarity: 1, complementarity: []int{6}},
		{name: "same quarter", other: b2Matrix, lifeAttitudes: 0.5, similarity: 1, complementarity: []int{6, 7}},
		{name: "same hemisphere", other: a2Matrix, lifeAttitudes: 0.25, similarity: 0.5, complementarity: []int{6, 5}},
		{name: "opposite hemisphere", other: leftTwinMatrix, lifeAttitudes: 0, similarity: 0, complementarity: []int{6, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair := NewPair(mixedMatrix, tt.other)
			assert.Equal(t, tt.lifeAttitudes, pair.LifeAttitudes())
			assert.Equal(t, tt.similarity, pair.SimilarityThinking())
			assert.Equal(t, tt.complementarity, pair.Complementarity())
		})
	}
}

func TestPair_EmptyPortraits(t *testing.T) {
	empty := NewPair(Matrix{}, Matrix{})
	assert.Equal(t, 0.0, empty.PartnerAcceptance())
	assert.Equal(t, [2]float64{0, 0}, empty.Attraction())
	assert.Equal(t, 1.0, empty.Understanding())
	assert.Equal(t, [2]float64{0, 0}, empty.PsyMaturity())
	assert.Equal(t, []int{0}, empty.Complementarity())

	oneSided := NewPair(mixedMatrix, Matrix{})
	assert.Equal(t, 0.0, oneSided.PartnerAcceptance())
	assert.Equal(t, 0.0, oneSided.Understanding())
	assert.Equal(t, [2]float64{0, 0}, oneSided.Attraction())
}

func TestPair_SymmetricMetrics(t *testing.T) {
	matrices := []Matrix{{}, mixedMatrix, innovatorMatrix, leftTwinMatrix, a2Matrix, b2Matrix, calmMatrix}

	for _, m1 := range matrices {
		for _, m2 := range matrices {
			forward, backward := NewPair(m1, m2), NewPair(m2, m1)
			assert.Equal(t, forward.Understanding(), backward.Understanding())
			assert.Equal(t, forward.LifeAttitudes(), backward.LifeAttitudes())
			assert.Equal(t, forward.SimilarityThinking(), backward.SimilarityThinking())
			assert.Equal(t, forward.PartnerAcceptance(), backward.PartnerAcceptance())
		}
	}
}

func TestPair_Summary(t *testing.T) {
	pair := NewPair(mixedMatrix, leftTwinMatrix)
	summary := pair.Summary()

	assert.Equal(t, pair.Partner1(), summary.Partner1)
	assert.Equal(t, pair.Understanding(), summary.Understanding)
	assert.Equal(t, pair.Attraction(), summary.Attraction)
	assert.Equal(t, pair.Complementarity(), summary.Complementarity)
}
