// Package server exposes recipe generation over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/zoobzio/chefbot"
	"go.uber.org/zap"
)

// Generator runs recipe invocations. *chefbot.Chef implements it.
type Generator interface {
	Run(ctx context.Context, initial chefbot.State) (*chefbot.Result, error)
	Graph() *chefbot.Graph
}

// RecipeResponse is the body returned by POST /v1/recipes.
type RecipeResponse struct {
	Recipe     string             `json:"recipe"`
	Found      bool               `json:"found"`
	State      map[string]any     `json:"state"`
	Transcript []chefbot.Step     `json:"transcript"`
	Usage      chefbot.TokenUsage `json:"usage"`
}

// GraphResponse is the body returned by GET /v1/graph.
type GraphResponse struct {
	Stages []chefbot.StageName `json:"stages"`
	Edges  []chefbot.Edge      `json:"edges"`
}

// MaxRequestBytes bounds the body accepted by POST /v1/recipes.
const MaxRequestBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

// Server handles the HTTP API.
type Server struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a server over gen.
func New(gen Generator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{gen: gen, logger: logger}
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/openapi.json", s.openapi)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/recipes", s.generate)
		r.Get("/fields", s.fields)
		r.Get("/choices", s.choices)
		r.Get("/graph", s.graph)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	initial, err := chefbot.FromMap(body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.gen.Run(r.Context(), initial)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RecipeResponse{
		Recipe:     result.Text(),
		Found:      result.State.Authoritative() != "",
		State:      result.State.Map(),
		Transcript: result.Transcript.Steps(),
		Usage:      result.Transcript.Usage(),
	})
}

func (s *Server) fields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, chefbot.Fields())
}

func (s *Server) choices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"choices":             chefbot.Choices(),
		"example_recipes":     chefbot.ExampleRecipes,
		"example_ingredients": chefbot.ExampleIngredients,
	})
}

func (s *Server) graph(w http.ResponseWriter, _ *http.Request) {
	g := s.gen.Graph()
	writeJSON(w, http.StatusOK, GraphResponse{Stages: g.Stages(), Edges: g.Edges()})
}

func (s *Server) openapi(w http.ResponseWriter, _ *http.Request) {
	data, err := Document().MarshalJSON()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// fail maps domain errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("recipe request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// StatusFor returns the HTTP status for a generation error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, chefbot.ErrConflictingRequest),
		errors.Is(err, chefbot.ErrUnknownField),
		errors.Is(err, chefbot.ErrInvalidField):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, chefbot.ErrModelUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
