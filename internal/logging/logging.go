// Package logging builds the zap logger used by chefbot binaries and bridges
// chefbot hook events into it.
package logging

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/chefbot"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger or a development console logger.
func New(production bool, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Bridge forwards chefbot hook events to a logger until closed.
type Bridge struct {
	closers []func()
}

// Observe hooks every chefbot signal and writes each event to logger.
// Failure signals log at error level, model and provider traffic at debug,
// everything else at info.
func Observe(logger *zap.Logger) *Bridge {
	b := &Bridge{}
	for _, signal := range chefbot.Signals {
		level := levelFor(signal)
		name := string(signal)
		listener := capitan.Hook(signal, func(_ context.Context, e *capitan.Event) {
			if ce := logger.Check(level, name); ce != nil {
				ce.Write(Fields(e)...)
			}
		})
		b.closers = append(b.closers, func() { listener.Close() })
	}
	return b
}

// Close detaches every hook.
func (b *Bridge) Close() {
	for _, closeHook := range b.closers {
		closeHook()
	}
	b.closers = nil
}

// Fields extracts the known chefbot keys present on an event.
func Fields(e *capitan.Event) []zap.Field {
	var out []zap.Field
	for _, k := range stringKeys {
		if v, ok := k.from(e); ok && v != "" {
			out = append(out, zap.String(k.name, v))
		}
	}
	for _, k := range intKeys {
		if v, ok := k.from(e); ok {
			out = append(out, zap.Int(k.name, v))
		}
	}
	return out
}

func levelFor(signal capitan.Signal) zapcore.Level {
	switch signal {
	case chefbot.InvokeFailed, chefbot.StageFailed, chefbot.ModelCallFailed, chefbot.ProviderCallFailed:
		return zapcore.ErrorLevel
	case chefbot.ModelCallStarted, chefbot.ModelCallCompleted,
		chefbot.ProviderCallStarted, chefbot.ProviderCallCompleted,
		chefbot.StageStarted, chefbot.StageSkipped:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

var stringKeys = []struct {
	name string
	from func(*capitan.Event) (string, bool)
}{
	{"invocation", chefbot.InvocationIDKey.From},
	{"mode", chefbot.ModeKey.From},
	{"stage", chefbot.StageKey.From},
	{"outcome", chefbot.OutcomeKey.From},
	{"request", chefbot.RequestIDKey.From},
	{"provider", chefbot.ProviderKey.From},
	{"model", chefbot.ModelKey.From},
	{"finish_reason", chefbot.FinishReasonKey.From},
	{"error", chefbot.ErrorKey.From},
}

var intKeys = []struct {
	name string
	from func(*capitan.Event) (int, bool)
}{
	{"ingredients", chefbot.IngredientCountKey.From},
	{"recipe_length", chefbot.RecipeLengthKey.From},
	{"tokens_prompt", chefbot.PromptTokensKey.From},
	{"tokens_completion", chefbot.CompletionTokensKey.From},
	{"tokens_total", chefbot.TotalTokensKey.From},
	{"duration_ms", chefbot.DurationMsKey.From},
	{"http_status", chefbot.HTTPStatusCodeKey.From},
}
