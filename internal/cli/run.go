package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/grannydannick/superpowercoach/internal/fetch"
	"github.com/grannydannick/superpowercoach/internal/llm"
	"github.com/grannydannick/superpowercoach/internal/member"
	"github.com/grannydannick/superpowercoach/internal/prompt"
	"github.com/grannydannick/superpowercoach/internal/protocol"
	"github.com/grannydannick/superpowercoach/internal/rag"
)

const (
	formatPrompt = "prompt"
	formatJSON   = "json"
)

// Run executes one pass of the workflow. Outputs already written stay
// valid even when a later step (email generation) fails.
func (a *App) Run(ctx context.Context, opts Options) error {
	logger := a.Logger.With("run_id", uuid.NewString())

	if opts.Input == "" && opts.FreeText == "" {
		return fmt.Errorf("provide --input or --free-text")
	}
	if opts.Format != formatPrompt && opts.Format != formatJSON {
		return fmt.Errorf("unknown format %q (want %s or %s)", opts.Format, formatPrompt, formatJSON)
	}

	store, err := protocol.Load(ctx, opts.Protocols, a.Config.MaxFetchBytes)
	if err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}
	logger.Debug("knowledge base loaded", "chunks", len(store.Chunks()))

	in, err := a.loadInput(ctx, opts, store)
	if err != nil {
		return err
	}

	enriched := rag.Enrich(in.Protocols, store)
	for _, e := range enriched {
		if !e.Found() {
			logger.Warn("protocol not found in knowledge base",
				"protocol", e.ProtocolName, "rank", e.Rank)
		}
	}
	if opts.RAGOutput != "" {
		b, err := json.MarshalIndent(enriched, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal rag output: %w", err)
		}
		if err := os.WriteFile(opts.RAGOutput, append(b, '\n'), 0o644); err != nil {
			return fmt.Errorf("write rag output: %w", err)
		}
	}

	pin := prompt.BuildInput(in, enriched)

	var combined prompt.CombinedPrompt
	if opts.Format == formatPrompt || opts.GenerateEmails {
		combined, err = a.assemble(ctx, opts, pin)
		if err != nil {
			return err
		}
		logger.Debug("prompt assembled", "checksum", combined.Checksum())
	}

	if err := a.writeMain(opts, pin, combined); err != nil {
		return err
	}

	if opts.GenerateEmails {
		if err := a.generateEmails(ctx, opts, combined, logger); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) loadInput(ctx context.Context, opts Options, store *protocol.Store) (*member.MemberInput, error) {
	if opts.FreeText == "" {
		return member.LoadFile(opts.Input)
	}

	client, err := a.newClient(opts)
	if err != nil {
		return nil, err
	}
	in, raw, err := client.SynthesizeInput(ctx, opts.FreeText, store.Allowed())
	if err != nil {
		return nil, err
	}
	if opts.SyntheticOutput != "" {
		if err := os.WriteFile(opts.SyntheticOutput, append(raw, '\n'), 0o644); err != nil {
			return nil, fmt.Errorf("write synthetic input: %w", err)
		}
	}
	return in, nil
}

func (a *App) assemble(ctx context.Context, opts Options, pin prompt.Input) (prompt.CombinedPrompt, error) {
	template, err := fetch.Text(ctx, opts.Prompt, a.Config.MaxFetchBytes)
	if err != nil {
		return "", fmt.Errorf("load prompt template: %w", err)
	}
	flow, err := fetch.Text(ctx, opts.AnalysisFlow, a.Config.MaxFetchBytes)
	if err != nil {
		// The analysis-flow document is optional; a missing default
		// file just means the template stands alone.
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("load analysis flow: %w", err)
		}
		flow = ""
	}
	return prompt.Assemble(template, flow, pin)
}

func (a *App) writeMain(opts Options, pin prompt.Input, combined prompt.CombinedPrompt) error {
	var out []byte
	if opts.Format == formatJSON {
		b, err := pin.MarshalIndent()
		if err != nil {
			return fmt.Errorf("marshal prompt input: %w", err)
		}
		out = append(b, '\n')
	} else {
		out = []byte(combined.String())
	}

	if opts.Output == "" {
		_, err := a.Out.Write(out)
		return err
	}
	if err := os.WriteFile(opts.Output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (a *App) generateEmails(ctx context.Context, opts Options, combined prompt.CombinedPrompt, logger *slog.Logger) error {
	client, err := a.newClient(opts)
	if err != nil {
		return err
	}
	series, err := client.GenerateEmails(ctx, combined)
	if err != nil {
		return err
	}
	logger.Info("email series generated", "emails", len(series))

	if opts.EmailsOutput == "" {
		_, err := a.Out.Write([]byte(series.Render()))
		return err
	}
	if err := os.WriteFile(opts.EmailsOutput, []byte(series.Render()), 0o644); err != nil {
		return fmt.Errorf("write emails output: %w", err)
	}
	return nil
}

// newClient resolves the credential and model (flag over environment) and
// builds the LLM client. A missing key is a GenerationError.
func (a *App) newClient(opts Options) (*llm.Client, error) {
	key := opts.APIKey
	if key == "" {
		key = a.Config.OpenAIKey
	}
	if key == "" {
		return nil, &llm.GenerationError{Op: "configure", Err: llm.ErrNoAPIKey}
	}
	model := opts.Model
	if model == "" {
		model = a.Config.Model
	}
	base := opts.APIBase
	if base == "" {
		base = a.Config.APIBase
	}

	p, err := a.NewProvider(key, model, base)
	if err != nil {
		return nil, &llm.GenerationError{Op: "configure", Err: err}
	}
	return llm.New(llm.WithProvider(p), llm.WithLogger(a.Logger))
}
