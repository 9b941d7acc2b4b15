// Package services wires the ledger domains together for the transport layer.
package services

import (
	"github.com/Henryno111/deposit-stx/audit"
	"github.com/Henryno111/deposit-stx/depositpool"
	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/rewards"
	"github.com/Henryno111/deposit-stx/taskmanager"
	"github.com/Henryno111/deposit-stx/workflow"
)

type Services struct {
	Store      ledger.Store
	Guard      ledger.Guard
	Pool       *depositpool.Pool
	Tasks      *taskmanager.Manager
	Rewards    *rewards.Distributor
	Workflow   *workflow.Orchestrator
	Reconciler *audit.Reconciler
}

func New(store ledger.Store, owner models.Principal) *Services {
	guard := ledger.NewGuard(owner)
	tasks := taskmanager.New(store, guard)
	dist := rewards.New(store, guard)
	return &Services{
		Store:      store,
		Guard:      guard,
		Pool:       depositpool.New(store, guard),
		Tasks:      tasks,
		Rewards:    dist,
		Workflow:   workflow.New(tasks, dist),
		Reconciler: audit.NewReconciler(store),
	}
}
