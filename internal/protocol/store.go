package protocol

import (
	"context"
	"regexp"
	"strings"

	"github.com/grannydannick/superpowercoach/internal/fetch"
)

// Chunk is one protocol definition from the knowledge base: a "## " headed
// block inside a fenced code region, with its named subsections extracted.
type Chunk struct {
	Title                    string
	ProtocolName             string
	Body                     string
	PrimaryRecommendation    string
	SecondaryRecommendations string
	SafetyConsiderations     string
	EvidenceSources          string
}

// AllowedProtocol is the (theme, protocol name) pair exposed to the
// synthetic-input generator so it only picks protocols that exist.
type AllowedProtocol struct {
	Theme        string `json:"theme"`
	ProtocolName string `json:"protocol_name"`
}

// Store holds the parsed knowledge base. It is built fresh per run and
// never mutated after Load.
type Store struct {
	chunks []Chunk
}

var (
	codeBlockRx  = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.*?)```")
	protocolLine = "**Protocol:**"
	subsectionRx = regexp.MustCompile(`(?m)^###\s+.+\s*$`)
	nonAlnumRx   = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// Load fetches the knowledge base at ref (path or URL) and parses it.
func Load(ctx context.Context, ref string, maxBytes int) (*Store, error) {
	text, err := fetch.Text(ctx, ref, maxBytes)
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}

// Parse builds a Store from raw knowledge-base text.
func Parse(text string) *Store {
	var chunks []Chunk
	for _, m := range codeBlockRx.FindAllStringSubmatch(text, -1) {
		for _, block := range splitChunks(m[1]) {
			chunks = append(chunks, parseChunk(block))
		}
	}
	return &Store{chunks: chunks}
}

// splitChunks divides a code block into "## "-headed chunk texts. Lines
// before the first header are dropped.
func splitChunks(block string) []string {
	var out []string
	var current []string
	for _, line := range strings.Split(block, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "## ") {
			if len(current) > 0 {
				out = append(out, strings.TrimSpace(strings.Join(current, "\n")))
			}
			current = []string{line}
		} else if len(current) > 0 {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		out = append(out, strings.TrimSpace(strings.Join(current, "\n")))
	}
	return out
}

func parseChunk(text string) Chunk {
	lines := strings.Split(text, "\n")
	title := strings.TrimSpace(strings.Replace(strings.TrimSpace(lines[0]), "##", "", 1))
	var name string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), protocolLine) {
			name = strings.TrimSpace(strings.Replace(line, protocolLine, "", 1))
			break
		}
	}
	return Chunk{
		Title:                    title,
		ProtocolName:             name,
		Body:                     text,
		PrimaryRecommendation:    ExtractSection(text, "Primary Recommendation"),
		SecondaryRecommendations: ExtractSection(text, "Secondary Recommendations"),
		SafetyConsiderations:     ExtractSection(text, "Safety Considerations"),
		EvidenceSources:          ExtractSection(text, "Evidence Sources"),
	}
}

// ExtractSection returns the body of the "### <heading>" subsection, up to
// the next "### " heading or end of text. Missing headings yield "".
func ExtractSection(text, heading string) string {
	rx := regexp.MustCompile(`(?m)^###\s+` + regexp.QuoteMeta(heading) + `\s*$`)
	loc := rx.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	if next := subsectionRx.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	return strings.TrimSpace(rest)
}

// Chunks returns the parsed chunks in knowledge-base order.
func (s *Store) Chunks() []Chunk { return s.chunks }

// Allowed lists the protocols usable by the synthetic-input generator.
func (s *Store) Allowed() []AllowedProtocol {
	var out []AllowedProtocol
	for _, c := range s.chunks {
		if c.ProtocolName != "" {
			out = append(out, AllowedProtocol{Theme: c.Title, ProtocolName: c.ProtocolName})
		}
	}
	return out
}

// minMatchScore keeps the Jaccard fallback from pairing a recommendation
// with a chunk on incidental token overlap (every name ends in "Protocol").
const minMatchScore = 0.3

// Match resolves a query against chunk titles and protocol names:
// case-normalized exact match first, then substring containment, then a
// Jaccard token-overlap fallback above minMatchScore. A nil result is an
// ordinary miss, not an error.
func (s *Store) Match(query string) *Chunk {
	q := normalize(query)
	if q == "" {
		return nil
	}
	for i := range s.chunks {
		c := &s.chunks[i]
		if q == normalize(c.ProtocolName) || q == normalize(c.Title) {
			return c
		}
	}
	for i := range s.chunks {
		c := &s.chunks[i]
		if contains(q, normalize(c.ProtocolName)) || contains(q, normalize(c.Title)) {
			return c
		}
	}

	qt := strings.Fields(q)
	bestScore := 0.0
	var best *Chunk
	for i := range s.chunks {
		c := &s.chunks[i]
		score := jaccard(qt, tokens(c.Title))
		if n := jaccard(qt, tokens(c.ProtocolName)); n > score {
			score = n
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < minMatchScore {
		return nil
	}
	return best
}

// contains reports substring containment in either direction between two
// normalized non-empty strings.
func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func normalize(s string) string {
	return strings.Join(tokens(s), " ")
}

func tokens(s string) []string {
	cleaned := nonAlnumRx.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Fields(cleaned)
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	sa := make(map[string]struct{}, len(a))
	for _, t := range a {
		sa[t] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, t := range b {
		sb[t] = struct{}{}
	}
	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
