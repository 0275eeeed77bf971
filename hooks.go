package chefbot

import "github.com/zoobzio/capitan"

// Signals for hook events.
const (
	InvokeStarted   = capitan.Signal("chefbot.invoke.started")
	InvokeCompleted = capitan.Signal("chefbot.invoke.completed")
	InvokeFailed    = capitan.Signal("chefbot.invoke.failed")

	StageStarted   = capitan.Signal("chefbot.stage.started")
	StageCompleted = capitan.Signal("chefbot.stage.completed")
	StageSkipped   = capitan.Signal("chefbot.stage.skipped")
	StageFailed    = capitan.Signal("chefbot.stage.failed")

	ModelCallStarted   = capitan.Signal("chefbot.model.call.started")
	ModelCallCompleted = capitan.Signal("chefbot.model.call.completed")
	ModelCallFailed    = capitan.Signal("chefbot.model.call.failed")

	ProviderCallStarted   = capitan.Signal("chefbot.provider.call.started")
	ProviderCallCompleted = capitan.Signal("chefbot.provider.call.completed")
	ProviderCallFailed    = capitan.Signal("chefbot.provider.call.failed")
)

// Signals lists every signal the package and its providers emit.
var Signals = []capitan.Signal{
	InvokeStarted, InvokeCompleted, InvokeFailed,
	StageStarted, StageCompleted, StageSkipped, StageFailed,
	ModelCallStarted, ModelCallCompleted, ModelCallFailed,
	ProviderCallStarted, ProviderCallCompleted, ProviderCallFailed,
}

// Keys for hook event fields.
var (
	// Invocation identification.
	InvocationIDKey = capitan.NewStringKey("chefbot.invocation.id")
	ModeKey         = capitan.NewStringKey("chefbot.request.mode")
	StageKey        = capitan.NewStringKey("chefbot.stage")
	OutcomeKey      = capitan.NewStringKey("chefbot.stage.outcome")

	// Model call data.
	RequestIDKey   = capitan.NewStringKey("chefbot.request.id")
	PromptKey      = capitan.NewStringKey("chefbot.prompt")
	ResponseKey    = capitan.NewStringKey("chefbot.response")
	TemperatureKey = capitan.NewFloat64Key("chefbot.temperature")

	// Stage output data.
	IngredientCountKey = capitan.NewIntKey("chefbot.ingredients.count")
	RecipeLengthKey    = capitan.NewIntKey("chefbot.recipe.length")

	// Error information.
	ErrorKey = capitan.NewStringKey("chefbot.error")

	// Provider information.
	ProviderKey = capitan.NewStringKey("chefbot.provider")
	ModelKey    = capitan.NewStringKey("chefbot.model")

	// Provider metrics.
	PromptTokensKey     = capitan.NewIntKey("chefbot.tokens.prompt")
	CompletionTokensKey = capitan.NewIntKey("chefbot.tokens.completion")
	TotalTokensKey      = capitan.NewIntKey("chefbot.tokens.total")
	DurationMsKey       = capitan.NewIntKey("chefbot.duration.ms")

	// HTTP metadata.
	HTTPStatusCodeKey = capitan.NewIntKey("chefbot.http.status.code")
	FinishReasonKey   = capitan.NewStringKey("chefbot.response.finish.reason")
)
