// Package llm wraps the external text-generation API behind a single
// capability interface so the retrieval and assembly core stays testable
// without network access.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/grannydannick/superpowercoach/internal/email"
	"github.com/grannydannick/superpowercoach/internal/llm/provider"
	"github.com/grannydannick/superpowercoach/internal/member"
	"github.com/grannydannick/superpowercoach/internal/prompt"
	"github.com/grannydannick/superpowercoach/internal/protocol"
)

const (
	emailTemperature     = 0.2
	synthesisTemperature = 0.3
)

type Client struct {
	provider provider.Provider
	logger   *slog.Logger
}

type ClientOption func(*Client)

func WithProvider(p provider.Provider) ClientOption {
	return func(c *Client) {
		c.provider = p
	}
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

func New(opts ...ClientOption) (*Client, error) {
	c := &Client{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if c.provider == nil {
		return nil, generationErr("init", errors.New("llm provider not configured"))
	}
	if err := c.provider.Validate(); err != nil {
		return nil, generationErr("init", err)
	}
	return c, nil
}

// GenerateEmails submits the combined prompt and splits the reply into the
// email series. One synchronous call, no retries.
func (c *Client) GenerateEmails(ctx context.Context, p prompt.CombinedPrompt) (email.Series, error) {
	out, err := c.provider.Complete(ctx, provider.Request{
		UserPrompt:  p.String(),
		Temperature: emailTemperature,
	})
	if err != nil {
		return nil, generationErr("emails", err)
	}

	series, err := email.Split(out)
	if err != nil {
		return nil, generationErr("emails", err)
	}
	c.logger.Debug("email series generated", "emails", len(series))
	return series, nil
}

// synthesisRequest is the user-prompt payload for synthetic input
// generation.
type synthesisRequest struct {
	FreeText         string                     `json:"free_text"`
	AllowedProtocols []protocol.AllowedProtocol `json:"allowed_protocols"`
	RequiredSchema   json.RawMessage            `json:"required_schema"`
}

// SynthesizeInput asks the model to turn a free-text member description
// into a MemberInput-shaped JSON document, constrained to the allowed
// protocol list. The reply is parsed exactly like a user-supplied file;
// the raw JSON is returned alongside for the --synthetic-output file.
func (c *Client) SynthesizeInput(ctx context.Context, freeText string, allowed []protocol.AllowedProtocol) (*member.MemberInput, []byte, error) {
	userPrompt, err := json.MarshalIndent(synthesisRequest{
		FreeText:         freeText,
		AllowedProtocols: allowed,
		RequiredSchema:   json.RawMessage(synthesizeSchema),
	}, "", "  ")
	if err != nil {
		return nil, nil, generationErr("synthesize", err)
	}

	out, err := c.provider.Complete(ctx, provider.Request{
		SystemPrompt: SynthesizeSystem,
		UserPrompt:   string(userPrompt),
		Temperature:  synthesisTemperature,
	})
	if err != nil {
		return nil, nil, generationErr("synthesize", err)
	}

	raw := []byte(stripCodeFences(out))
	in, err := member.Parse(raw)
	if err != nil {
		var merr *member.MalformedInputError
		if errors.As(err, &merr) {
			return nil, nil, generationErr("synthesize", fmt.Errorf("model reply: %w", err))
		}
		return nil, nil, err
	}
	return in, raw, nil
}

var fencedRx = regexp.MustCompile("(?s)```(?:json)?\\n(.*?)```")

// stripCodeFences unwraps the first fenced block from a model reply, or
// returns the trimmed reply when none is present.
func stripCodeFences(s string) string {
	if m := fencedRx.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}
