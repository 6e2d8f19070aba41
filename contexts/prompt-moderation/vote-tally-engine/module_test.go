package votetallyengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	domainerrors "pojat/contexts/prompt-moderation/vote-tally-engine/domain/errors"
	"pojat/contexts/prompt-moderation/vote-tally-engine/ports"
	"pojat/internal/shared/identity"
)

var tallyAdmin = identity.Identity{UserID: "admin-1", Role: identity.RoleAdmin}

func groupPtr(s string) *string { return &s }

func voter(id string, group *string) identity.Identity {
	return identity.Identity{UserID: id, Role: identity.RoleUser, GroupID: group}
}

func newRecallModule(t *testing.T, creatorGroup *string) Module {
	t.Helper()
	module := NewInMemoryModule(nil, nil)
	module.Store.SetPrompt(ports.PromptProjection{
		PromptID:       "prompt-1",
		CreatorID:      "creator-1",
		CreatorGroupID: creatorGroup,
		Status:         "recall",
		LastModifiedAt: time.Now().UTC().Add(-time.Hour),
	})
	return module
}

func castVote(t *testing.T, module Module, actor identity.Identity, group *string) (int, bool) {
	t.Helper()
	module.Store.SetVoterGroup(actor.UserID, group)
	resp, err := module.Handler.CastVoteHandler(context.Background(), actor, "prompt-1")
	if err != nil {
		t.Fatalf("vote by %s failed: %v", actor.UserID, err)
	}
	return resp.TotalPoints, resp.Activated
}

func TestSameGroupVotesActivateAtThree(t *testing.T) {
	module := newRecallModule(t, groupPtr("g1"))

	total, activated := castVote(t, module, voter("v1", groupPtr("g1")), groupPtr("g1"))
	if total != 2 || activated {
		t.Fatalf("first vote: total=%d activated=%v", total, activated)
	}
	total, activated = castVote(t, module, voter("v2", groupPtr("g1")), groupPtr("g1"))
	if total != 4 || activated {
		t.Fatalf("second vote: total=%d activated=%v", total, activated)
	}
	total, activated = castVote(t, module, voter("v3", groupPtr("g1")), groupPtr("g1"))
	if total != 6 || !activated {
		t.Fatalf("third vote must activate: total=%d activated=%v", total, activated)
	}

	projection, err := module.Store.GetPromptProjection(context.Background(), "prompt-1")
	if err != nil {
		t.Fatalf("projection read failed: %v", err)
	}
	if projection.Status != "active" {
		t.Fatalf("prompt status = %s, want active", projection.Status)
	}
}

func TestOutOfGroupVotesNeedSix(t *testing.T) {
	module := newRecallModule(t, nil)

	for i := 1; i <= 5; i++ {
		actor := voter(fmt.Sprintf("v%d", i), groupPtr("other"))
		module.Store.SetVoterGroup(actor.UserID, actor.GroupID)
		resp, err := module.Handler.CastVoteHandler(context.Background(), actor, "prompt-1")
		if err != nil {
			t.Fatalf("vote %d failed: %v", i, err)
		}
		if resp.Activated {
			t.Fatalf("vote %d must not activate at %d points", i, resp.TotalPoints)
		}
		if resp.TotalPoints != i {
			t.Fatalf("vote %d total = %d", i, resp.TotalPoints)
		}
		if resp.PointsNeeded != 6-i {
			t.Fatalf("vote %d points needed = %d, want %d", i, resp.PointsNeeded, 6-i)
		}
	}

	total, activated := castVote(t, module, voter("v6", groupPtr("whatever")), groupPtr("whatever"))
	if total != 6 || !activated {
		t.Fatalf("sixth vote must activate: total=%d activated=%v", total, activated)
	}
}

func TestCreatorCannotVoteOnOwnPrompt(t *testing.T) {
	module := newRecallModule(t, groupPtr("g1"))

	_, err := module.Handler.CastVoteHandler(context.Background(), voter("creator-1", groupPtr("g1")), "prompt-1")
	if !errors.Is(err, domainerrors.ErrSelfVoteForbidden) {
		t.Fatalf("expected self-vote rejection, got %v", err)
	}
}

func TestDuplicateVoteConflicts(t *testing.T) {
	module := newRecallModule(t, nil)

	castVote(t, module, voter("v1", nil), nil)
	_, err := module.Handler.CastVoteHandler(context.Background(), voter("v1", nil), "prompt-1")
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected duplicate vote conflict, got %v", err)
	}
}

func TestVoteOutsideRecallRejected(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	module.Store.SetPrompt(ports.PromptProjection{
		PromptID:  "prompt-1",
		CreatorID: "creator-1",
		Status:    "pending",
	})

	_, err := module.Handler.CastVoteHandler(context.Background(), voter("v1", nil), "prompt-1")
	if !errors.Is(err, domainerrors.ErrPromptNotOpenForVoting) {
		t.Fatalf("expected not-open rejection, got %v", err)
	}

	_, err = module.Handler.CastVoteHandler(context.Background(), voter("v1", nil), "missing")
	if !errors.Is(err, domainerrors.ErrPromptNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentVotesActivateExactlyOnce(t *testing.T) {
	module := newRecallModule(t, groupPtr("g1"))

	const voters = 12
	for i := 0; i < voters; i++ {
		module.Store.SetVoterGroup(fmt.Sprintf("v%d", i), groupPtr("g1"))
	}

	var wg sync.WaitGroup
	activations := make(chan int, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			actor := voter(fmt.Sprintf("v%d", n), groupPtr("g1"))
			resp, err := module.Handler.CastVoteHandler(context.Background(), actor, "prompt-1")
			if err != nil {
				// Later voters hit the closed voting window after activation.
				if !errors.Is(err, domainerrors.ErrPromptNotOpenForVoting) {
					t.Errorf("vote by v%d failed: %v", n, err)
				}
				return
			}
			if resp.Activated {
				activations <- resp.TotalPoints
			}
		}(i)
	}
	wg.Wait()
	close(activations)

	fired := 0
	for total := range activations {
		fired++
		if total < 6 {
			t.Fatalf("activation fired below threshold at %d points", total)
		}
	}
	if fired != 1 {
		t.Fatalf("activation fired %d times, want exactly once", fired)
	}
}

func TestForceActivateRequiresThreshold(t *testing.T) {
	module := newRecallModule(t, nil)
	castVote(t, module, voter("v1", nil), nil)

	resp, err := module.Handler.ForceActivateHandler(context.Background(), tallyAdmin, "prompt-1")
	if !errors.Is(err, domainerrors.ErrThresholdNotMet) {
		t.Fatalf("expected threshold error, got %v (resp=%+v)", err, resp)
	}
}

func TestForceActivateIdempotentOnActivePrompt(t *testing.T) {
	module := newRecallModule(t, groupPtr("g1"))
	for i := 1; i <= 3; i++ {
		castVote(t, module, voter(fmt.Sprintf("v%d", i), groupPtr("g1")), groupPtr("g1"))
	}

	before, err := module.Store.GetPromptProjection(context.Background(), "prompt-1")
	if err != nil {
		t.Fatalf("projection read failed: %v", err)
	}
	if before.Status != "active" {
		t.Fatalf("setup: prompt should be active, got %s", before.Status)
	}

	resp, err := module.Handler.ForceActivateHandler(context.Background(), tallyAdmin, "prompt-1")
	if err != nil {
		t.Fatalf("force activate on active prompt must be no-op success: %v", err)
	}
	if !resp.AlreadyActive || resp.Activated {
		t.Fatalf("expected already-active no-op, got %+v", resp)
	}

	after, err := module.Store.GetPromptProjection(context.Background(), "prompt-1")
	if err != nil {
		t.Fatalf("projection read failed: %v", err)
	}
	if !after.LastModifiedAt.Equal(before.LastModifiedAt) {
		t.Fatal("no-op force activate must not touch last_modified_at")
	}
}

func TestForceActivateAdminGate(t *testing.T) {
	module := newRecallModule(t, nil)

	_, err := module.Handler.ForceActivateHandler(context.Background(), voter("v1", nil), "prompt-1")
	if !errors.Is(err, domainerrors.ErrAdminOnly) {
		t.Fatalf("expected admin gate, got %v", err)
	}
}

func TestPreviewReportsEligibilityWithoutWriting(t *testing.T) {
	module := newRecallModule(t, groupPtr("g1"))
	castVote(t, module, voter("v1", groupPtr("g1")), groupPtr("g1"))
	castVote(t, module, voter("v2", nil), nil)

	preview, err := module.Handler.PreviewHandler(context.Background(), tallyAdmin, "prompt-1")
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview.TotalPoints != 3 || preview.Eligible || preview.PointsNeeded != 3 {
		t.Fatalf("preview = %+v", preview)
	}

	projection, err := module.Store.GetPromptProjection(context.Background(), "prompt-1")
	if err != nil {
		t.Fatalf("projection read failed: %v", err)
	}
	if projection.Status != "recall" {
		t.Fatalf("preview must not change state, status = %s", projection.Status)
	}

	if _, err := module.Handler.PreviewHandler(context.Background(), voter("v1", nil), "prompt-1"); !errors.Is(err, domainerrors.ErrAdminOnly) {
		t.Fatalf("preview must be admin only, got %v", err)
	}
}

func TestCastVoteAppendsOutboxEvents(t *testing.T) {
	module := newRecallModule(t, groupPtr("g1"))
	for i := 1; i <= 3; i++ {
		castVote(t, module, voter(fmt.Sprintf("v%d", i), groupPtr("g1")), groupPtr("g1"))
	}

	var voteEvents, activationEvents int
	for _, envelope := range module.Store.Outbox() {
		switch envelope.EventType {
		case "vote.cast":
			voteEvents++
		case "prompt.activated":
			activationEvents++
		}
	}
	if voteEvents != 3 {
		t.Fatalf("vote.cast events = %d, want 3", voteEvents)
	}
	if activationEvents != 1 {
		t.Fatalf("prompt.activated events = %d, want 1", activationEvents)
	}
}
