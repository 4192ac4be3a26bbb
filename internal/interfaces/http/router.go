package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/ojsouza/almoxarifado-api/internal/application/auth"
	"github.com/ojsouza/almoxarifado-api/internal/application/inventory"
	syncapp "github.com/ojsouza/almoxarifado-api/internal/application/sync"
	"github.com/ojsouza/almoxarifado-api/internal/domain/entity"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	QueryUC     *inventory.QueryUseCase
	ProcessUC   *inventory.ProcessTransactionUseCase
	Rebuilder   *inventory.SnapshotRebuilder
	ImportUC    *inventory.ImportUseCase
	Auditor     *inventory.LedgerAuditor
	SyncManager *syncapp.Manager
	SyncQueue   *syncapp.Queue
	JWTSecret   string
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rotas protegidas (exigem Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Itens: leitura para qualquer papel; remoção só admin/almoxarife
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.QueryUC, deps.Rebuilder)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Delete("/:id", RequireRole(entity.RoleAlmoxarife), itemHandler.Delete)
	items.Post("/:id/rebuild", RequireRole(entity.RoleAlmoxarife), itemHandler.Rebuild)

	// Movimentações: registrar exige almoxarife
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.ProcessUC, deps.QueryUC)
	movements.Get("/", movementHandler.List)
	movements.Post("/", RequireRole(entity.RoleAlmoxarife), movementHandler.Create)

	// Auditoria e importação: só admin/almoxarife
	auditHandler := NewAuditHandler(deps.Auditor)
	protected.Post("/audit", RequireRole(entity.RoleAlmoxarife), auditHandler.Run)

	importHandler := NewImportHandler(deps.ImportUC)
	protected.Post("/import", RequireRole(entity.RoleAlmoxarife), importHandler.Run)

	// Sincronização remota
	syncGroup := protected.Group("/sync")
	syncHandler := NewSyncHandler(deps.SyncManager, deps.SyncQueue)
	syncGroup.Get("/status", syncHandler.Status)
	syncGroup.Post("/drain", RequireRole(entity.RoleAlmoxarife), syncHandler.Drain)
	syncGroup.Post("/from-cloud", RequireRole(entity.RoleAlmoxarife), syncHandler.FromCloud)
}
