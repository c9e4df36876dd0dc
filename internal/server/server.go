// Package server exposes the decision engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/veralux-ai/veralux/internal/audit"
	"github.com/veralux-ai/veralux/internal/auth"
	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/config"
	"github.com/veralux-ai/veralux/internal/console"
	"github.com/veralux-ai/veralux/internal/fusion"
	"github.com/veralux-ai/veralux/internal/market"
	"github.com/veralux-ai/veralux/internal/telemetry"
	"github.com/veralux-ai/veralux/internal/vision"
)

// Server wraps the HTTP server components for veralux.
type Server struct {
	mux  *http.ServeMux
	cfg  *config.Config
	auth *auth.Auth

	brands  *catalog.Registry
	authReg *catalog.Registry

	identifyPipeline     *vision.Pipeline
	authenticatePipeline *vision.Pipeline

	market  *market.Service
	audit   *audit.Emitter
	tel     *telemetry.Provider
	store   *requestStore
	maxBody int64
}

// Options carries the assembled dependencies for New. Pipelines are built by
// the caller so tests can substitute fixed producers.
type Options struct {
	Config               *config.Config
	Auth                 *auth.Auth
	Brands               *catalog.Registry
	IdentifyPipeline     *vision.Pipeline
	AuthenticatePipeline *vision.Pipeline
	Market               *market.Service
	Audit                *audit.Emitter
	Telemetry            *telemetry.Provider
}

// New creates a server with all routes registered.
func New(opts Options) *Server {
	cfg := opts.Config
	s := &Server{
		mux:                  http.NewServeMux(),
		cfg:                  cfg,
		auth:                 opts.Auth,
		brands:               opts.Brands,
		authReg:              catalog.Authenticity(),
		identifyPipeline:     opts.IdentifyPipeline,
		authenticatePipeline: opts.AuthenticatePipeline,
		market:               opts.Market,
		audit:                opts.Audit,
		tel:                  opts.Telemetry,
		store:                newRequestStore(time.Duration(cfg.Server.RequestTTLMin) * time.Minute),
		maxBody:              cfg.Server.MaxUploadBytes,
	}

	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/console", console.Handler())
	s.mux.HandleFunc("/v1/identify", s.handleIdentify)
	s.mux.HandleFunc("/v1/authenticate", s.handleAuthenticate)
	s.mux.HandleFunc("/v1/brands", s.handleBrands)
	s.mux.HandleFunc("/v1/requests/", s.handleRequestStatus)

	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start runs the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	log.Printf("veralux running on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// authenticateRequest resolves the calling client. With no keys configured
// the server runs open and every caller is "anonymous".
func (s *Server) authenticateRequest(w http.ResponseWriter, r *http.Request) (auth.Client, bool) {
	if !s.auth.Enabled() {
		return auth.Client{ID: "anonymous"}, true
	}
	key := r.Header.Get("X-API-Key")
	if key == "" {
		writeError(w, http.StatusUnauthorized, "Missing API key", "authentication_error")
		return auth.Client{}, false
	}
	client, ok := s.auth.Lookup(key)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid API key", "authentication_error")
		return auth.Client{}, false
	}
	return client, true
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeError(w http.ResponseWriter, status int, message, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{Message: message, Type: kind}})
}

// emitAudit queues the audit record and caches it for status lookups.
func (s *Server) emitAudit(ctx context.Context, ev *audit.Event) {
	s.store.Complete(ev.RequestID, ev)
	audit.LogEvent(ev)
	s.audit.Emit(ctx, ev)
}

// agreementFeatures maps votes to explainability features: a method that
// voted for the winner contributes its score, a method that voted elsewhere
// contributes 0 (its support for the winner is nil), and a method with no
// evidence contributes nothing at all.
func agreementFeatures(votes []fusion.MethodVote, winner catalog.Category) []fusion.Feature {
	var out []fusion.Feature
	for _, v := range votes {
		if v.Unknown() {
			continue
		}
		score := 0.0
		if v.Category == winner {
			score = v.Score
		}
		out = append(out, fusion.Feature{Method: v.Method, Score: score})
	}
	return out
}
