// Package lifecycle boots the engine, wires its components together the
// way the reference service's component container does, and drives
// graceful shutdown: broadcast to tasks, await termination, snapshot,
// exit.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger-engine/internal/config"
	"ledger-engine/internal/domain/ledger"
	"ledger-engine/internal/domain/models"
	"ledger-engine/internal/domain/processor"
	"ledger-engine/internal/infrastructure/metrics"
	"ledger-engine/internal/infrastructure/persistence/sqlite"
	"ledger-engine/internal/infrastructure/rpc"
	"ledger-engine/internal/pkg/logging"
)

// Orchestrator owns the engine's boot and shutdown sequence.
type Orchestrator struct {
	config    *config.Config
	store     *sqlite.Store
	processor *processor.Processor
	server    *rpc.Server
}

// Boot opens the snapshot store, loads prior state, constructs the ledger
// and processor adopting it, and builds the wire front-end. It does not
// start serving yet — call Run for that.
func Boot(cfg *config.Config) (*Orchestrator, error) {
	logging.Init(cfg)

	store, err := sqlite.Open(cfg.Persistence.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	state, err := store.LoadState(context.Background())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	accountStore := ledger.NewStore(0)
	for i := range state.Accounts {
		acc := state.Accounts[i]
		accountStore.Insert(&models.Account{
			UUID:               acc.UUID,
			Balance:            acc.Balance,
			Keys:               acc.Keys,
			TransactionHistory: acc.TransactionHistory,
		})
	}

	processedSet := ledger.NewProcessedSet()
	for _, id := range state.Processed {
		processedSet.Insert(id)
	}

	l := ledger.Adopt(accountStore, processedSet)
	proc := processor.Adopt(l, state.Transactions)

	metrics.AccountsGauge.Set(float64(l.AccountCount()))
	metrics.ProcessedTransactionsGauge.Set(float64(processedSet.Len()))

	logging.Info("state loaded", map[string]interface{}{
		"accounts":  len(state.Accounts),
		"txns":      len(state.Transactions),
		"processed": len(state.Processed),
		"db_path":   cfg.Persistence.DBPath,
	})

	server := rpc.NewServer(cfg.GRPC.Address, cfg.GRPC.Port, proc)

	return &Orchestrator{config: cfg, store: store, processor: proc, server: server}, nil
}

// Run starts the wire front-end, blocks until SIGINT/SIGTERM (or the
// context is cancelled), then snapshots and shuts down. It returns after a
// clean shutdown; callers exit 0 on a nil return.
func (o *Orchestrator) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	o.server.Start(errCh)

	logging.Info("engine started", map[string]interface{}{
		"address": o.config.GRPC.Address,
		"port":    o.config.GRPC.Port,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logging.Error("wire front-end task failed, continuing shutdown", err, nil)
	case sig := <-quit:
		logging.Info("received shutdown signal", map[string]interface{}{"signal": sig.String()})
	case <-ctx.Done():
		logging.Info("context cancelled, shutting down", nil)
	}

	return o.Shutdown()
}

// Shutdown stops the wire front-end and writes a final snapshot.
func (o *Orchestrator) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := o.server.Shutdown(shutdownCtx); err != nil {
		logging.Error("wire front-end shutdown failed", err, nil)
	}

	state := sqlite.State{
		Accounts:     o.processor.AccountsSnapshot(),
		Transactions: o.processor.Transactions(),
		Processed:    o.processor.ProcessedSnapshot(),
	}

	if err := o.store.SaveState(shutdownCtx, state); err != nil {
		o.store.Close()
		return fmt.Errorf("save snapshot: %w", err)
	}

	logging.Info("snapshot saved", map[string]interface{}{
		"accounts":  len(state.Accounts),
		"txns":      len(state.Transactions),
		"processed": len(state.Processed),
	})

	return o.store.Close()
}
