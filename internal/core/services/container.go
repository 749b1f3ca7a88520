package services

import (
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/platform/config"
)

// Container holds all the services and manages their dependencies. It is
// built once per process and passed down explicitly.
type Container struct {
	Ledger    portssvc.LedgerClient
	Reconcile portssvc.ReconcileSvc
	Import    portssvc.ImportSvc
	Sync      portssvc.SyncSvc
}

// NewContainer creates a new service container with properly initialized dependencies
func NewContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	ledger portssvc.LedgerClient,
	chooser portssvc.Chooser,
	loaders []portssvc.SourceLoader,
) *Container {
	container := &Container{Ledger: ledger}

	container.Reconcile = NewReconcileService(repos.AccountMappingRepo, ledger, chooser)
	container.Import = NewImportService(ledger, WithBatchSize(cfg.ImportBatchSize))
	container.Sync = NewSyncService(loaders, container.Reconcile, container.Import)

	return container
}
