package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	lifecycleservice "pojat/contexts/prompt-moderation/lifecycle-service"
	lifecycleentities "pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	notationservice "pojat/contexts/prompt-moderation/notation-service"
	notationports "pojat/contexts/prompt-moderation/notation-service/ports"
	votetallyengine "pojat/contexts/prompt-moderation/vote-tally-engine"
	voteports "pojat/contexts/prompt-moderation/vote-tally-engine/ports"
)

func newTestServer() *Server {
	now := time.Now().UTC().Add(-time.Hour)
	group := "g1"

	lifecycle := lifecycleservice.NewInMemoryModule([]lifecycleentities.Prompt{
		{
			PromptID:       "prompt-active",
			Description:    "an approved prompt",
			Status:         lifecycleentities.StatusActive,
			CreatorID:      "creator-1",
			CreatedAt:      now,
			LastModifiedAt: now,
		},
		{
			PromptID:       "prompt-pending",
			Description:    "a submitted prompt",
			Status:         lifecycleentities.StatusPending,
			CreatorID:      "creator-1",
			CreatedAt:      now,
			LastModifiedAt: now,
		},
	}, nil)

	votes := votetallyengine.NewInMemoryModule(nil, nil)
	votes.Store.SetPrompt(voteports.PromptProjection{
		PromptID:       "prompt-recall",
		CreatorID:      "creator-1",
		CreatorGroupID: &group,
		Status:         "recall",
		LastModifiedAt: now,
	})

	notation := notationservice.NewInMemoryModule(nil)
	notation.Store.SetPrompt(notationports.PromptProjection{
		PromptID:       "prompt-active",
		CreatorGroupID: &group,
		Status:         "active",
	})
	notation.Store.AddNote("prompt-active", notationports.RatedNote{NoteID: "n1", Value: 5, RaterGroupID: &group})
	other := "g2"
	notation.Store.AddNote("prompt-active", notationports.RatedNote{NoteID: "n2", Value: 10, RaterGroupID: &other})

	return New(lifecycle, votes, notation, nil, "")
}

func TestCreatePromptRequiresIdentityHeader(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/moderation/v1/prompts", bytes.NewReader([]byte(`{
		"description":"new prompt"
	}`)))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTransitionDeniedForStranger(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/moderation/v1/prompts/prompt-pending/status", bytes.NewReader([]byte(`{
		"status":"active"
	}`)))
	req.Header.Set("X-User-Id", "user-9")
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTransitionInvalidStatusRejected(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/moderation/v1/prompts/prompt-pending/status", bytes.NewReader([]byte(`{
		"status":"archived"
	}`)))
	req.Header.Set("X-User-Id", "admin-1")
	req.Header.Set("X-User-Role", "admin")
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestModerationQueueForbiddenForNonAdmin(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/moderation/v1/moderation/queue", nil)
	req.Header.Set("X-User-Id", "user-9")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPendingPromptDetailHiddenFromStrangers(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/moderation/v1/prompts/prompt-pending", nil)
	req.Header.Set("X-User-Id", "user-9")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestActivePromptDetailEmbedsNotation(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/moderation/v1/prompts/prompt-active", nil)
	req.Header.Set("X-User-Id", "user-9")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var body struct {
		Notation *struct {
			WeightedScore float64 `json:"weighted_score"`
			Count         int     `json:"note_count"`
		} `json:"notation"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Notation == nil {
		t.Fatalf("active detail must embed notation, body=%s", rr.Body.String())
	}
	if body.Notation.Count != 2 || body.Notation.WeightedScore != 3.5 {
		t.Fatalf("notation = %+v", body.Notation)
	}
}

func TestCastVoteAndDuplicateConflict(t *testing.T) {
	server := newTestServer()

	cast := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/moderation/v1/prompts/prompt-recall/votes", nil)
		req.Header.Set("X-User-Id", userID)
		req.Header.Set("X-User-Group", "g1")
		rr := httptest.NewRecorder()
		server.mux.ServeHTTP(rr, req)
		return rr
	}

	if rr := cast("voter-1"); rr.Code != http.StatusCreated {
		t.Fatalf("first vote: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := cast("voter-1"); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate vote: expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSelfVoteForbiddenOverHTTP(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/moderation/v1/prompts/prompt-recall/votes", nil)
	req.Header.Set("X-User-Id", "creator-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestForceActivateForbiddenForNonAdmin(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/moderation/v1/prompts/prompt-recall/activate", nil)
	req.Header.Set("X-User-Id", "user-9")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestNotationRejectsNonActivePrompt(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/moderation/v1/prompts/prompt-missing/notation", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}
