package votetallyengine

import (
	"log/slog"

	httpadapter "pojat/contexts/prompt-moderation/vote-tally-engine/adapters/http"
	"pojat/contexts/prompt-moderation/vote-tally-engine/adapters/memory"
	"pojat/contexts/prompt-moderation/vote-tally-engine/application/commands"
	"pojat/contexts/prompt-moderation/vote-tally-engine/application/queries"
	"pojat/contexts/prompt-moderation/vote-tally-engine/domain/entities"
	"pojat/contexts/prompt-moderation/vote-tally-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Votes  ports.VoteRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	tally := commands.TallyUseCase{
		Votes:  deps.Votes,
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	preview := queries.PreviewUseCase{
		Votes: deps.Votes,
	}
	return Module{
		Handler: httpadapter.Handler{
			Tally:   tally,
			Preview: preview,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Vote, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Votes:  store,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
