package lifecycleservice

import (
	"log/slog"

	httpadapter "pojat/contexts/prompt-moderation/lifecycle-service/adapters/http"
	"pojat/contexts/prompt-moderation/lifecycle-service/adapters/memory"
	"pojat/contexts/prompt-moderation/lifecycle-service/application/commands"
	"pojat/contexts/prompt-moderation/lifecycle-service/application/queries"
	"pojat/contexts/prompt-moderation/lifecycle-service/domain/entities"
	"pojat/contexts/prompt-moderation/lifecycle-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Prompts     ports.PromptRepository
	Maintenance ports.MaintenanceRunner
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	lifecycle := commands.LifecycleUseCase{
		Prompts:     deps.Prompts,
		Maintenance: deps.Maintenance,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	catalog := queries.CatalogUseCase{
		Prompts: deps.Prompts,
	}
	return Module{
		Handler: httpadapter.Handler{
			Lifecycle: lifecycle,
			Catalog:   catalog,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Prompt, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Prompts:     store,
		Maintenance: store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
