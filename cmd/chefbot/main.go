// Command chefbot generates recipes against a locally served language model.
//
// Usage:
//
//	chefbot generate -recipe-name "Butter Chicken"
//	chefbot generate -input-text "chicken, onions, spices" -preference Vegan
//	chefbot interactive
//	chefbot serve
//	chefbot graph
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zoobzio/chefbot"
	"github.com/zoobzio/chefbot/internal/config"
	"github.com/zoobzio/chefbot/internal/logging"
	"github.com/zoobzio/chefbot/ollama"
	"github.com/zoobzio/chefbot/openai"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "generate":
		err = runGenerate(ctx, args)
	case "interactive":
		err = runInteractive(ctx, args)
	case "serve":
		err = runServe(ctx, args)
	case "graph":
		err = runGraph(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "chefbot: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "chefbot: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: chefbot <command> [flags]

commands:
  generate      generate one recipe from flags
  interactive   fill in the recipe form in the terminal
  serve         run the HTTP API
  graph         print the stage graph
`)
}

// common holds the flags every model-backed command accepts.
type common struct {
	configPath string
	envFile    string
	debug      bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML config file (defaults to $CHEFBOT_CONFIG)")
	fs.StringVar(&c.envFile, "env-file", ".env", "dotenv file; ignored when missing")
	fs.BoolVar(&c.debug, "debug", false, "print every prompt and raw model response to stderr")
}

// app is the wired runtime shared by the commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	bridge *logging.Bridge
	chef   *chefbot.Chef
}

func setup(c common) (*app, error) {
	cfg, err := config.Load(c.configPath, c.envFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Production(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	var opts []chefbot.Option
	if c.debug {
		opts = append(opts, chefbot.WithDebug(os.Stderr))
	}
	provider := newProvider(cfg.Model)
	model := chefbot.NewModel(provider, cfg.Model.Temperature, opts...)

	logger.Debug("chefbot configured",
		zap.String("env", cfg.Env),
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.Model.Name),
		zap.Duration("timeout", cfg.Model.Timeout),
	)

	return &app{
		cfg:    cfg,
		logger: logger,
		bridge: logging.Observe(logger),
		chef:   chefbot.NewWithGraph(chefbot.DefaultGraph(), model),
	}, nil
}

func (a *app) Close() {
	a.bridge.Close()
	_ = a.logger.Sync()
}

func newProvider(m config.Model) chefbot.Provider {
	switch m.Provider {
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:  m.APIKey,
			Model:   m.Name,
			BaseURL: m.BaseURL,
			Timeout: m.Timeout,
		})
	default:
		return ollama.New(ollama.Config{
			Model:   m.Name,
			BaseURL: m.BaseURL,
			Timeout: m.Timeout,
		})
	}
}
