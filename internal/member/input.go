package member

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Recommendation is one ranked protocol pick from the member's analysis.
// JSON tags follow the external schema naming (snake_case) to keep
// serialization stable between services and docs.
type Recommendation struct {
	Rank           int    `json:"rank"`
	Theme          string `json:"theme"`
	ProtocolName   string `json:"protocol_name"`
	EvidenceSource string `json:"evidence_source"`
}

// MemberInput is the structured member document driving personalization.
// B, P, and C are passed through to the prompt verbatim, so they stay
// raw JSON rather than typed structs.
type MemberInput struct {
	Biomarkers  json.RawMessage  `json:"B"`
	Preferences json.RawMessage  `json:"P"`
	Context     json.RawMessage  `json:"C"`
	Protocols   []Recommendation `json:"PRO"`
}

// MalformedInputError reports an input document that cannot be used:
// unparseable JSON/YAML or required fields missing.
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed member input: %s: %v", e.Reason, e.Err)
	}
	return "malformed member input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// Long-form aliases accepted alongside the short keys. The short key wins
// when both are present.
var fieldAliases = map[string]string{
	"B":   "biomarker_analysis",
	"P":   "preference_analysis",
	"C":   "patient_context",
	"PRO": "selected_protocols",
}

// LoadFile reads a member input document from a JSON or YAML file.
func LoadFile(path string) (*MemberInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(raw)
	default:
		return Parse(raw)
	}
}

// Parse validates and decodes a JSON member input document.
func Parse(raw []byte) (*MemberInput, error) {
	if err := validateInputJSON(raw); err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &MalformedInputError{Reason: "not a JSON object", Err: err}
	}

	in := &MemberInput{
		Biomarkers:  pick(fields, "B"),
		Preferences: pick(fields, "P"),
		Context:     pick(fields, "C"),
	}
	if err := json.Unmarshal(pick(fields, "PRO"), &in.Protocols); err != nil {
		return nil, &MalformedInputError{Reason: "recommendation list unreadable", Err: err}
	}
	return in, nil
}

// ParseYAML bridges a YAML document to JSON and parses it the same way.
func ParseYAML(raw []byte) (*MemberInput, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, &MalformedInputError{Reason: "yaml parse", Err: err}
	}
	jb, err := json.Marshal(v)
	if err != nil {
		return nil, &MalformedInputError{Reason: "yaml to json", Err: err}
	}
	return Parse(jb)
}

// pick resolves a field by its short key, falling back to the long-form
// alias. A null short key falls through to the alias the same way a
// missing one does.
func pick(fields map[string]json.RawMessage, key string) json.RawMessage {
	if v, ok := fields[key]; ok && notNull(v) {
		return v
	}
	if v, ok := fields[fieldAliases[key]]; ok && notNull(v) {
		return v
	}
	return json.RawMessage("null")
}

func notNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) != "null"
}
