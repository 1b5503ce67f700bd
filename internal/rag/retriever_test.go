package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grannydannick/superpowercoach/internal/member"
	"github.com/grannydannick/superpowercoach/internal/protocol"
)

const kb = "```markdown\n" +
	"## Metabolic Health\n" +
	"**Protocol:** Metabolic Reset Protocol\n" +
	"\n" +
	"### Primary Recommendation\n" +
	"Eat within a 10-hour window.\n" +
	"\n" +
	"### Evidence Sources\n" +
	"TRF trials 2019-2023.\n" +
	"```\n"

func recs() []member.Recommendation {
	return []member.Recommendation{
		{Rank: 1, Theme: "Metabolic Health", ProtocolName: "Metabolic Reset Protocol", EvidenceSource: "Biomarker"},
		{Rank: 2, Theme: "Cold Therapy", ProtocolName: "Cryo Immersion Protocol", EvidenceSource: "Preference"},
	}
}

func TestEnrich_PreservesLengthAndOrder(t *testing.T) {
	store := protocol.Parse(kb)
	out := Enrich(recs(), store)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Rank)
	assert.Equal(t, "Metabolic Reset Protocol", out[0].ProtocolName)
	assert.Equal(t, 2, out[1].Rank)
	assert.Equal(t, "Cryo Immersion Protocol", out[1].ProtocolName)
}

func TestEnrich_HitCarriesSectionBody(t *testing.T) {
	store := protocol.Parse(kb)
	out := Enrich(recs(), store)

	hit := out[0]
	assert.True(t, hit.Found())
	assert.Equal(t, "Metabolic Health", hit.MatchedProtocolTitle)
	assert.Equal(t, "Eat within a 10-hour window.", hit.Details.PrimaryRecommendation)
	assert.Equal(t, "TRF trials 2019-2023.", hit.Details.EvidenceSources)
	assert.Contains(t, hit.Details.FullProtocolText, "## Metabolic Health")
}

func TestEnrich_MissGetsMarker(t *testing.T) {
	store := protocol.Parse(kb)
	out := Enrich(recs(), store)

	miss := out[1]
	assert.False(t, miss.Found())
	assert.Empty(t, miss.MatchedProtocolTitle)
	assert.Equal(t, NotFoundMarker, miss.Details.FullProtocolText)
	assert.Empty(t, miss.Details.PrimaryRecommendation)
}

func TestEnrich_EmptyStoreAllMarkers(t *testing.T) {
	store := protocol.Parse("")
	out := Enrich(recs(), store)
	require.Len(t, out, 2)
	for _, e := range out {
		assert.Equal(t, NotFoundMarker, e.Details.FullProtocolText)
	}
}

func TestEnrich_RanklessRecommendation(t *testing.T) {
	store := protocol.Parse(kb)
	out := Enrich([]member.Recommendation{
		{ProtocolName: "Metabolic Reset Protocol", EvidenceSource: "Biomarker"},
	}, store)

	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Rank)
	assert.True(t, out[0].Found())
	assert.Equal(t, "Eat within a 10-hour window.", out[0].Details.PrimaryRecommendation)
}

func TestEnrich_NoRecommendations(t *testing.T) {
	store := protocol.Parse(kb)
	assert.Empty(t, Enrich(nil, store))
}
