// Package audit checks ledger invariants and exports ledger snapshots on a
// schedule.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
)

// Report is the result of one reconciliation pass.
type Report struct {
	Height         uint64   `json:"height"`
	TotalPool      uint64   `json:"total_pool"`
	DepositSum     uint64   `json:"deposit_sum"`
	DepositorCount uint64   `json:"depositor_count"`
	Problems       []string `json:"problems,omitempty"`
}

func (r Report) OK() bool { return len(r.Problems) == 0 }

type Reconciler struct {
	store ledger.Store
}

func NewReconciler(store ledger.Store) *Reconciler {
	return &Reconciler{store: store}
}

// Check verifies that the pool total equals the sum of all deposits and that
// every deposit is active exactly when its amount is positive. It returns the
// report together with ledger.ErrInvariantViolation when either does not hold.
func (r *Reconciler) Check(ctx context.Context) (Report, error) {
	var rep Report
	err := r.store.View(ctx, func(tx ledger.Tx) error {
		rep.Height = tx.Height()
		var state models.PoolState
		if _, err := tx.Get(ledger.NSPool, ledger.PoolStateKey, &state); err != nil {
			return err
		}
		rep.TotalPool = state.TotalPool

		keys, err := tx.Keys(ledger.NSDeposit, "")
		if err != nil {
			return err
		}
		for _, k := range keys {
			var d models.Deposit
			if _, err := tx.Get(ledger.NSDeposit, k, &d); err != nil {
				return err
			}
			rep.DepositSum += d.Amount
			if d.Active {
				rep.DepositorCount++
			}
			if d.Active != (d.Amount > 0) {
				rep.Problems = append(rep.Problems, fmt.Sprintf("deposit %s: active=%t amount=%d", k, d.Active, d.Amount))
			}
		}
		if rep.DepositSum != rep.TotalPool {
			rep.Problems = append(rep.Problems, fmt.Sprintf("total pool %d != deposit sum %d", rep.TotalPool, rep.DepositSum))
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}
	if !rep.OK() {
		return rep, ledger.ErrInvariantViolation
	}
	return rep, nil
}

// Snapshot is every ledger namespace at one height.
type Snapshot struct {
	Height  uint64                                `json:"height"`
	Entries map[string]map[string]json.RawMessage `json:"entries"`
}

func TakeSnapshot(ctx context.Context, store ledger.Store) (Snapshot, error) {
	snap := Snapshot{Entries: make(map[string]map[string]json.RawMessage)}
	err := store.View(ctx, func(tx ledger.Tx) error {
		snap.Height = tx.Height()
		for _, ns := range ledger.Namespaces {
			keys, err := tx.Keys(ns, "")
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				continue
			}
			entries := make(map[string]json.RawMessage, len(keys))
			for _, k := range keys {
				var raw json.RawMessage
				if _, err := tx.Get(ns, k, &raw); err != nil {
					return err
				}
				entries[k] = raw
			}
			snap.Entries[ns] = entries
		}
		return nil
	})
	return snap, err
}
