// Command bookgen is the CLI entrypoint: it loads configuration, wires the
// provider chain and the pipeline, runs a single generation, and renders
// the finished manuscript to disk.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/coder/websocket"

	"github.com/kroryan/Generador-de-libros-IA-cli/internal/book"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/config"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/genstate"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/llm"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/llm/providers"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/narrative"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/plan"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/ratelimit"
	"github.com/kroryan/Generador-de-libros-IA-cli/internal/writer"
)

// CLI is the top-level command definition.
type CLI struct {
	Subject      string `arg:"" help:"Subject or premise of the book."`
	Genre        string `help:"Genre." default:"fiction"`
	Profile      string `help:"Target audience profile." default:"general"`
	Style        string `help:"Prose style." default:"literary"`
	Providers    string `help:"Comma-separated provider fail-over order." default:"ollama"`
	Out          string `name:"out" help:"Output file path." default:"book.txt" type:"path"`
	LogLevel     string `help:"Log level (debug, info, warn, error)." default:"info"`
	NetworkEvent string `name:"events-ws" help:"Optional websocket URL to stream state-change events to."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("bookgen"),
		kong.Description("Generate a full-length book manuscript from a one-line premise."),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.LogLevel)
	if err := run(cli, logger); err != nil {
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func run(cli CLI, logger *slog.Logger) error {
	sigCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	providerNames := splitCSV(cli.Providers)
	cfg, err := config.Load(providerNames)
	if err != nil {
		return fmt.Errorf("bookgen: %w", err)
	}

	chain, err := buildProviderChain(cfg)
	if err != nil {
		return fmt.Errorf("bookgen: %w", err)
	}

	limiter := ratelimit.New(cfg.RateLimit)
	invoker := llm.NewInvoker(chain, cfg.BreakerConfig, cfg.Retry, limiter, cfg.LLM, nil)

	observers := []genstate.Observer{&genstate.LoggerObserver{Logger: logger}}
	if cli.NetworkEvent != "" {
		conn, _, err := websocket.Dial(sigCtx, cli.NetworkEvent, nil)
		if err != nil {
			return fmt.Errorf("bookgen: dial events websocket: %w", err)
		}
		defer conn.Close(websocket.StatusNormalClosure, "generation finished")
		observers = append(observers, genstate.NewNetworkObserver(sigCtx, conn, logger))
	}
	state := genstate.NewManager(observers...)

	chains := plan.NewChains(invoker)
	narrativeMgr := narrative.NewManager(cfg.Narrative, "", &narrative.LLMSummarizer{Invoker: invoker})
	w := writer.New(writer.Config{}, invoker, narrativeMgr, state, logger)

	pipeline := book.NewPipeline(chains, w, narrativeMgr, state)

	manuscript, err := pipeline.Run(sigCtx, book.Request{
		Subject:      cli.Subject,
		Profile:      cli.Profile,
		Style:        cli.Style,
		Genre:        cli.Genre,
		OutputFormat: "txt",
		OutputPath:   cli.Out,
	})
	if err != nil {
		return fmt.Errorf("bookgen: generation: %w", err)
	}

	var formatter book.Formatter
	if err := formatter.Render(manuscript, cli.Out); err != nil {
		return fmt.Errorf("bookgen: %w", err)
	}

	logger.Info("manuscript written", "title", manuscript.Title, "chapters", len(manuscript.Chapters), "path", cli.Out)
	return nil
}

// buildProviderChain turns the configured provider names into a
// fail-over-ordered chain of concrete llm.Provider implementations.
func buildProviderChain(cfg config.Config) ([]llm.Named, error) {
	chain := make([]llm.Named, 0, len(cfg.ProviderChain))
	for _, p := range cfg.ProviderChain {
		switch p.Name {
		case "ollama":
			model := p.Model
			if model == "" {
				model = "llama3"
			}
			chain = append(chain, llm.Named{
				Name:     p.Name,
				Provider: providers.NewOllama(providers.OllamaConfig{BaseURL: p.APIBase, Model: model}),
			})
		case "anthropic":
			if p.APIKey == "" {
				continue
			}
			chain = append(chain, llm.Named{
				Name:     p.Name,
				Provider: providers.NewAnthropic(providers.AnthropicConfig{APIKey: p.APIKey, Model: p.Model}),
			})
		case "openai", "groq", "deepseek":
			if p.APIKey == "" {
				continue
			}
			chain = append(chain, llm.Named{
				Name: p.Name,
				Provider: providers.NewOpenAICompat(providers.OpenAICompatConfig{
					DisplayName: p.Name,
					APIKey:      p.APIKey,
					BaseURL:     p.APIBase,
					Model:       p.Model,
				}),
			})
		default:
			return nil, fmt.Errorf("unknown provider %q", p.Name)
		}
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no usable providers in chain")
	}
	return chain, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
