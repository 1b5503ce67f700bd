// Package prompt merges the member input, retrieved protocol details, and
// the static template documents into the combined prompt submitted to the
// text-generation model.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/grannydannick/superpowercoach/internal/member"
	"github.com/grannydannick/superpowercoach/internal/rag"
)

// Input is the document embedded in the combined prompt. Key names follow
// the external prompt contract.
type Input struct {
	Biomarkers  json.RawMessage         `json:"B"`
	Preferences json.RawMessage         `json:"P"`
	Context     json.RawMessage         `json:"C"`
	Protocols   []member.Recommendation `json:"PRO"`
	Details     []rag.EnrichedProtocol  `json:"PD"`
}

// CombinedPrompt is the finished prompt text. Immutable once built.
type CombinedPrompt string

func (p CombinedPrompt) String() string { return string(p) }

// Checksum returns a short xxhash fingerprint of the prompt, used for run
// logging and determinism checks.
func (p CombinedPrompt) Checksum() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(string(p)))
}

// BuildInput pairs the loaded member input with its enriched protocols.
func BuildInput(in *member.MemberInput, details []rag.EnrichedProtocol) Input {
	return Input{
		Biomarkers:  in.Biomarkers,
		Preferences: in.Preferences,
		Context:     in.Context,
		Protocols:   in.Protocols,
		Details:     details,
	}
}

// MarshalIndent serializes the input as the two-space-indented JSON used
// both inside the combined prompt and for --format json output.
func (in Input) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(in, "", "  ")
}

// Assemble concatenates the prompt template, the analysis-flow document,
// and the serialized input into the combined prompt. Identical inputs
// produce byte-identical output.
func Assemble(template, analysisFlow string, in Input) (CombinedPrompt, error) {
	payload, err := in.MarshalIndent()
	if err != nil {
		return "", fmt.Errorf("marshal prompt input: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(template, "\n"))
	if flow := strings.TrimSpace(analysisFlow); flow != "" {
		b.WriteString("\n\n")
		b.WriteString(flow)
	}
	b.WriteString("\n\n<input>\n")
	b.Write(payload)
	b.WriteString("\n</input>\n")
	return CombinedPrompt(b.String()), nil
}
