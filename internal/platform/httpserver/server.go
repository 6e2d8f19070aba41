package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	lifecycleservice "pojat/contexts/prompt-moderation/lifecycle-service"
	notationservice "pojat/contexts/prompt-moderation/notation-service"
	votetallyengine "pojat/contexts/prompt-moderation/vote-tally-engine"
	"pojat/internal/shared/identity"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "pojat/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	lifecycle lifecycleservice.Module
	votes     votetallyengine.Module
	notation  notationservice.Module
}

func New(
	lifecycle lifecycleservice.Module,
	votes votetallyengine.Module,
	notation notationservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		lifecycle: lifecycle,
		votes:     votes,
		notation:  notation,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing table for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/moderation/v1/prompts", s.handleCreatePrompt)
	s.mux.HandleFunc("GET /api/moderation/v1/prompts", s.handleListPrompts)
	s.mux.HandleFunc("GET /api/moderation/v1/prompts/search", s.handleSearchPrompts)
	s.mux.HandleFunc("GET /api/moderation/v1/prompts/mine", s.handleMyPrompts)
	s.mux.HandleFunc("GET /api/moderation/v1/prompts/{prompt_id}", s.handleGetPrompt)
	s.mux.HandleFunc("POST /api/moderation/v1/prompts/{prompt_id}/status", s.handleTransition)
	s.mux.HandleFunc("GET /api/moderation/v1/moderation/queue", s.handleModerationQueue)
	s.mux.HandleFunc("POST /api/moderation/v1/maintenance/state-sweep", s.handleStateSweep)

	s.mux.HandleFunc("POST /api/moderation/v1/prompts/{prompt_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /api/moderation/v1/prompts/{prompt_id}/votes", s.handleListVotes)
	s.mux.HandleFunc("GET /api/moderation/v1/prompts/{prompt_id}/tally", s.handleTallyPreview)
	s.mux.HandleFunc("POST /api/moderation/v1/prompts/{prompt_id}/activate", s.handleForceActivate)

	s.mux.HandleFunc("GET /api/moderation/v1/prompts/{prompt_id}/notation", s.handleGetNotation)
}

// resolveIdentity builds the caller identity from the gateway headers. The
// authenticating proxy owns header integrity; this layer only parses.
func resolveIdentity(r *http.Request) (identity.Identity, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		return identity.Identity{}, false
	}
	actor := identity.Identity{
		UserID: userID,
		Role:   identity.ParseRole(r.Header.Get("X-User-Role")),
	}
	if group := strings.TrimSpace(r.Header.Get("X-User-Group")); group != "" {
		actor.GroupID = &group
	}
	return actor, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
