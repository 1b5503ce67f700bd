package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grannydannick/superpowercoach/internal/email"
	"github.com/grannydannick/superpowercoach/internal/llm/provider"
	"github.com/grannydannick/superpowercoach/internal/prompt"
	"github.com/grannydannick/superpowercoach/internal/protocol"
)

type fakeProvider struct {
	reply   string
	err     error
	lastReq provider.Request
}

func (f *fakeProvider) Complete(ctx context.Context, req provider.Request) (string, error) {
	f.lastReq = req
	return f.reply, f.err
}

func (f *fakeProvider) Validate() error { return nil }

func newClient(t *testing.T, f *fakeProvider) *Client {
	t.Helper()
	c, err := New(WithProvider(f))
	require.NoError(t, err)
	return c
}

func TestNew_NoProvider(t *testing.T) {
	_, err := New()
	var gerr *GenerationError
	require.True(t, errors.As(err, &gerr))
}

func TestGenerateEmails_Success(t *testing.T) {
	f := &fakeProvider{reply: "Email 1\nWelcome aboard.\n\nEmail 2\nKeep going.\n"}
	c := newClient(t, f)

	series, err := c.GenerateEmails(context.Background(), prompt.CombinedPrompt("the combined prompt"))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "the combined prompt", f.lastReq.UserPrompt)
	assert.Empty(t, f.lastReq.SystemPrompt)
}

func TestGenerateEmails_ProviderError(t *testing.T) {
	f := &fakeProvider{err: errors.New("boom")}
	c := newClient(t, f)

	_, err := c.GenerateEmails(context.Background(), "p")
	var gerr *GenerationError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "emails", gerr.Op)
}

func TestGenerateEmails_NoSections(t *testing.T) {
	f := &fakeProvider{reply: "I refuse to write emails."}
	c := newClient(t, f)

	_, err := c.GenerateEmails(context.Background(), "p")
	assert.ErrorIs(t, err, email.ErrNoSections)
}

func TestSynthesizeInput_Success(t *testing.T) {
	f := &fakeProvider{reply: `{
	  "B": {"clinical_severity": "mild"},
	  "P": {"goals": ["sleep"]},
	  "C": {"demographics": {"age": "38", "sex": "M"}},
	  "PRO": [
	    {"rank": 1, "theme": "Sleep Quality", "protocol_name": "Sleep Optimization Protocol", "evidence_source": "Preference"}
	  ]
	}`}
	c := newClient(t, f)

	allowed := []protocol.AllowedProtocol{{Theme: "Sleep Quality", ProtocolName: "Sleep Optimization Protocol"}}
	in, raw, err := c.SynthesizeInput(context.Background(), "can't sleep, wants energy", allowed)
	require.NoError(t, err)
	require.Len(t, in.Protocols, 1)
	assert.Equal(t, "Sleep Optimization Protocol", in.Protocols[0].ProtocolName)
	assert.JSONEq(t, f.reply, string(raw))

	assert.Equal(t, SynthesizeSystem, f.lastReq.SystemPrompt)
	assert.Contains(t, f.lastReq.UserPrompt, `"free_text"`)
	assert.Contains(t, f.lastReq.UserPrompt, "Sleep Optimization Protocol")
	assert.Contains(t, f.lastReq.UserPrompt, `"required_schema"`)
}

func TestSynthesizeInput_StripsFences(t *testing.T) {
	f := &fakeProvider{reply: "```json\n{\"PRO\": [{\"rank\": 1, \"theme\": \"a\", \"protocol_name\": \"p\"}]}\n```"}
	c := newClient(t, f)

	in, _, err := c.SynthesizeInput(context.Background(), "text", nil)
	require.NoError(t, err)
	require.Len(t, in.Protocols, 1)
	assert.Equal(t, "p", in.Protocols[0].ProtocolName)
}

func TestSynthesizeInput_BadReply(t *testing.T) {
	f := &fakeProvider{reply: "not json at all"}
	c := newClient(t, f)

	_, _, err := c.SynthesizeInput(context.Background(), "text", nil)
	var gerr *GenerationError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "synthesize", gerr.Op)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("  {\"a\":1}  "))
}
