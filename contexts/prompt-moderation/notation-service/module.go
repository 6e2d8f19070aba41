package notationservice

import (
	"log/slog"

	httpadapter "pojat/contexts/prompt-moderation/notation-service/adapters/http"
	"pojat/contexts/prompt-moderation/notation-service/adapters/memory"
	"pojat/contexts/prompt-moderation/notation-service/application"
	"pojat/contexts/prompt-moderation/notation-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Notes  ports.NoteRepository
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Notation: application.Service{
				Notes:  deps.Notes,
				Logger: deps.Logger,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Notes:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
