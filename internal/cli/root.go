// Package cli wires the single-run coaching workflow: load member input,
// retrieve protocol details, assemble the combined prompt, and optionally
// generate the email series.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/grannydannick/superpowercoach/internal/config"
	"github.com/grannydannick/superpowercoach/internal/llm/provider"
)

// Options is the command-line surface of one run.
type Options struct {
	Input           string
	FreeText        string
	Protocols       string
	Prompt          string
	AnalysisFlow    string
	Format          string
	Output          string
	RAGOutput       string
	SyntheticOutput string
	GenerateEmails  bool
	EmailsOutput    string

	Model   string
	APIBase string
	APIKey  string
}

// ProviderFactory builds the text-generation provider for a run. Swapped
// for a stub in tests so the pipeline runs without network access.
type ProviderFactory func(apiKey, model, baseURL string) (provider.Provider, error)

// App holds the run dependencies shared by CLI commands.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Out         io.Writer
	NewProvider ProviderFactory
}

func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger,
		Out:    os.Stdout,
		NewProvider: func(apiKey, model, baseURL string) (provider.Provider, error) {
			popts := []provider.OpenAIProviderOption{
				provider.WithAPIKey(apiKey),
				provider.WithModel(model),
			}
			if baseURL != "" {
				popts = append(popts, provider.WithBaseURL(baseURL))
			}
			return provider.NewOpenAIProvider(popts...)
		},
	}
}

// NewRootCmd creates the top-level "superpowercoach" command.
func NewRootCmd(app *App) *cobra.Command {
	var opts Options
	root := &cobra.Command{
		Use:          "superpowercoach",
		Short:        "Assemble a personalized coaching email prompt from member data",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	f := root.Flags()
	f.StringVar(&opts.Input, "input", "", "path to member input JSON/YAML (optional if --free-text is provided)")
	f.StringVar(&opts.FreeText, "free-text", "", "free text used to synthesize member input via the LLM")
	f.StringVar(&opts.Protocols, "protocols", "protocols.txt", "path or URL of the protocol knowledge base")
	f.StringVar(&opts.Prompt, "prompt", "prompt.txt", "path or URL of the prompt template")
	f.StringVar(&opts.AnalysisFlow, "analysis-flow", "analysis_flow.txt", "path or URL of the analysis-flow document")
	f.StringVar(&opts.Format, "format", "prompt", "output format: prompt or json")
	f.StringVar(&opts.Output, "output", "", "path to write the combined output (stdout when empty)")
	f.StringVar(&opts.RAGOutput, "rag-output", "", "optional path to write retrieved protocol details JSON")
	f.StringVar(&opts.SyntheticOutput, "synthetic-output", "", "optional path to write synthesized input JSON")
	f.BoolVar(&opts.GenerateEmails, "generate-emails", false, "submit the combined prompt and write the email series")
	f.StringVar(&opts.EmailsOutput, "emails-output", "", "path to write generated emails (stdout when empty)")
	f.StringVar(&opts.Model, "llm-model", "", "LLM model name (default from OPENAI_MODEL)")
	f.StringVar(&opts.APIBase, "llm-api-base", "", "LLM API base URL (default from OPENAI_API_BASE)")
	f.StringVar(&opts.APIKey, "llm-api-key", "", "LLM API key (default from OPENAI_API_KEY)")

	return root
}
