// Package rag enriches ranked protocol recommendations with the full
// protocol text retrieved from the knowledge base.
package rag

import (
	"strings"

	"github.com/grannydannick/superpowercoach/internal/member"
	"github.com/grannydannick/superpowercoach/internal/protocol"
)

// NotFoundMarker is attached as the full protocol text when a
// recommendation has no match in the knowledge base.
const NotFoundMarker = "PROTOCOL NOT FOUND IN KNOWLEDGE BASE"

// Detail is the protocol text attached to a recommendation. Derived from
// the knowledge base on each run, never persisted.
type Detail struct {
	PrimaryRecommendation    string `json:"primary_recommendation"`
	SecondaryRecommendations string `json:"secondary_recommendations"`
	SafetyConsiderations     string `json:"safety_considerations"`
	EvidenceSources          string `json:"evidence_sources"`
	FullProtocolText         string `json:"full_protocol_text"`
}

// EnrichedProtocol is a recommendation plus its retrieved detail.
type EnrichedProtocol struct {
	Rank                 int    `json:"rank"`
	Theme                string `json:"theme"`
	ProtocolName         string `json:"protocol_name"`
	EvidenceSource       string `json:"evidence_source"`
	MatchedProtocolTitle string `json:"matched_protocol_title"`
	Details              Detail `json:"protocol_details"`
}

// Found reports whether the recommendation matched a knowledge-base chunk.
func (e EnrichedProtocol) Found() bool {
	return e.Details.FullProtocolText != NotFoundMarker
}

// Enrich looks up each recommendation in the store and attaches the
// matched chunk's detail. Misses get the not-found marker; recommendations
// are never dropped or reordered.
func Enrich(recs []member.Recommendation, store *protocol.Store) []EnrichedProtocol {
	out := make([]EnrichedProtocol, 0, len(recs))
	for _, rec := range recs {
		enriched := EnrichedProtocol{
			Rank:           rec.Rank,
			Theme:          strings.TrimSpace(rec.Theme),
			ProtocolName:   strings.TrimSpace(rec.ProtocolName),
			EvidenceSource: rec.EvidenceSource,
		}
		query := strings.TrimSpace(enriched.Theme + " " + enriched.ProtocolName)
		if c := store.Match(query); c != nil {
			enriched.MatchedProtocolTitle = c.Title
			enriched.Details = Detail{
				PrimaryRecommendation:    c.PrimaryRecommendation,
				SecondaryRecommendations: c.SecondaryRecommendations,
				SafetyConsiderations:     c.SafetyConsiderations,
				EvidenceSources:          c.EvidenceSources,
				FullProtocolText:         c.Body,
			}
		} else {
			enriched.Details = Detail{FullProtocolText: NotFoundMarker}
		}
		out = append(out, enriched)
	}
	return out
}
