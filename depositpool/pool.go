// Package depositpool custodies staked balances. Each principal has at most one
// deposit record; the pool keeps a running total, an administrative lock and
// the minimum accepted deposit.
package depositpool

import (
	"context"
	"math"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
)

// DefaultMinimumDeposit is 1 unit in micro-units.
const DefaultMinimumDeposit uint64 = 1_000_000

// Depositor is a deposit record together with its owner.
type Depositor struct {
	Principal models.Principal `json:"principal"`
	models.Deposit
}

type Pool struct {
	store ledger.Store
	guard ledger.Guard
}

func New(store ledger.Store, guard ledger.Guard) *Pool {
	return &Pool{store: store, guard: guard}
}

// Deposit adds amount to the caller's stake.
func (p *Pool) Deposit(ctx context.Context, caller models.Principal, amount uint64) error {
	if caller == "" {
		return ledger.ErrInvalidPrincipal
	}
	return p.store.Update(ctx, func(tx ledger.Tx) error {
		state, err := loadState(tx)
		if err != nil {
			return err
		}
		if amount < state.MinimumDeposit {
			return ledger.ErrInvalidAmount
		}
		if state.Locked {
			return ledger.ErrPoolLocked
		}
		var dep models.Deposit
		if _, err := tx.Get(ledger.NSDeposit, string(caller), &dep); err != nil {
			return err
		}
		if dep.Amount > math.MaxUint64-amount || state.TotalPool > math.MaxUint64-amount {
			return ledger.ErrInvalidAmount
		}

		dep.Amount += amount
		dep.Timestamp = tx.Height()
		dep.Active = dep.Amount > 0
		state.TotalPool += amount

		if err := tx.Put(ledger.NSDeposit, string(caller), dep); err != nil {
			return err
		}
		if err := tx.Put(ledger.NSPool, ledger.PoolStateKey, state); err != nil {
			return err
		}
		return ledger.AppendEvent(tx, models.AuditEvent{Kind: models.EventDeposit, Principal: caller, Amount: amount})
	})
}

// Withdraw removes amount from the caller's stake. A balance that reaches zero
// stays on record as inactive.
func (p *Pool) Withdraw(ctx context.Context, caller models.Principal, amount uint64) error {
	if caller == "" {
		return ledger.ErrInvalidPrincipal
	}
	return p.store.Update(ctx, func(tx ledger.Tx) error {
		var dep models.Deposit
		found, err := tx.Get(ledger.NSDeposit, string(caller), &dep)
		if err != nil {
			return err
		}
		if !found || amount > dep.Amount {
			return ledger.ErrInsufficientBalance
		}
		state, err := loadState(tx)
		if err != nil {
			return err
		}
		if amount > state.TotalPool {
			return ledger.ErrInvariantViolation
		}

		dep.Amount -= amount
		dep.Timestamp = tx.Height()
		dep.Active = dep.Amount > 0
		state.TotalPool -= amount

		if err := tx.Put(ledger.NSDeposit, string(caller), dep); err != nil {
			return err
		}
		if err := tx.Put(ledger.NSPool, ledger.PoolStateKey, state); err != nil {
			return err
		}
		return ledger.AppendEvent(tx, models.AuditEvent{Kind: models.EventWithdraw, Principal: caller, Amount: amount})
	})
}

func (p *Pool) SetPoolLock(ctx context.Context, caller models.Principal, locked bool) error {
	if err := p.guard.RequireOwner(caller); err != nil {
		return err
	}
	return p.store.Update(ctx, func(tx ledger.Tx) error {
		state, err := loadState(tx)
		if err != nil {
			return err
		}
		state.Locked = locked
		if err := tx.Put(ledger.NSPool, ledger.PoolStateKey, state); err != nil {
			return err
		}
		var flag uint64
		if locked {
			flag = 1
		}
		return ledger.AppendEvent(tx, models.AuditEvent{Kind: models.EventPoolLock, Principal: caller, Amount: flag})
	})
}

func (p *Pool) SetMinimumDeposit(ctx context.Context, caller models.Principal, amount uint64) error {
	if err := p.guard.RequireOwner(caller); err != nil {
		return err
	}
	return p.store.Update(ctx, func(tx ledger.Tx) error {
		state, err := loadState(tx)
		if err != nil {
			return err
		}
		state.MinimumDeposit = amount
		if err := tx.Put(ledger.NSPool, ledger.PoolStateKey, state); err != nil {
			return err
		}
		return ledger.AppendEvent(tx, models.AuditEvent{Kind: models.EventMinimumDeposit, Principal: caller, Amount: amount})
	})
}

// GetDeposit returns nil when the principal never deposited.
func (p *Pool) GetDeposit(ctx context.Context, who models.Principal) (*models.Deposit, error) {
	var dep *models.Deposit
	err := p.store.View(ctx, func(tx ledger.Tx) error {
		var d models.Deposit
		found, err := tx.Get(ledger.NSDeposit, string(who), &d)
		if err != nil || !found {
			return err
		}
		dep = &d
		return nil
	})
	return dep, err
}

func (p *Pool) GetTotalPool(ctx context.Context) (uint64, error) {
	state, err := p.state(ctx)
	return state.TotalPool, err
}

func (p *Pool) IsPoolLocked(ctx context.Context) (bool, error) {
	state, err := p.state(ctx)
	return state.Locked, err
}

func (p *Pool) GetMinimumDeposit(ctx context.Context) (uint64, error) {
	state, err := p.state(ctx)
	return state.MinimumDeposit, err
}

// ListDeposits returns every deposit record ordered by principal, including
// fully withdrawn ones.
func (p *Pool) ListDeposits(ctx context.Context) ([]Depositor, error) {
	out := []Depositor{}
	err := p.store.View(ctx, func(tx ledger.Tx) error {
		keys, err := tx.Keys(ledger.NSDeposit, "")
		if err != nil {
			return err
		}
		for _, k := range keys {
			d := Depositor{Principal: models.Principal(k)}
			if _, err := tx.Get(ledger.NSDeposit, k, &d.Deposit); err != nil {
				return err
			}
			out = append(out, d)
		}
		return nil
	})
	return out, err
}

// GetDepositorCount counts principals whose deposit is active.
func (p *Pool) GetDepositorCount(ctx context.Context) (uint64, error) {
	stats, err := p.Stats(ctx)
	return stats.DepositorCount, err
}

// Stats reads the pool aggregates from a single snapshot.
func (p *Pool) Stats(ctx context.Context) (models.PoolStats, error) {
	var stats models.PoolStats
	err := p.store.View(ctx, func(tx ledger.Tx) error {
		state, err := loadState(tx)
		if err != nil {
			return err
		}
		n, err := countActive(tx)
		if err != nil {
			return err
		}
		stats = models.PoolStats{
			TotalPool:      state.TotalPool,
			DepositorCount: n,
			MinimumDeposit: state.MinimumDeposit,
			Locked:         state.Locked,
		}
		return nil
	})
	return stats, err
}

func (p *Pool) state(ctx context.Context) (models.PoolState, error) {
	var state models.PoolState
	err := p.store.View(ctx, func(tx ledger.Tx) error {
		var err error
		state, err = loadState(tx)
		return err
	})
	return state, err
}

func loadState(tx ledger.Tx) (models.PoolState, error) {
	state := models.PoolState{MinimumDeposit: DefaultMinimumDeposit}
	if _, err := tx.Get(ledger.NSPool, ledger.PoolStateKey, &state); err != nil {
		return models.PoolState{}, err
	}
	return state, nil
}

func countActive(tx ledger.Tx) (uint64, error) {
	keys, err := tx.Keys(ledger.NSDeposit, "")
	if err != nil {
		return 0, err
	}
	var n uint64
	for _, k := range keys {
		var d models.Deposit
		if _, err := tx.Get(ledger.NSDeposit, k, &d); err != nil {
			return 0, err
		}
		if d.Active {
			n++
		}
	}
	return n, nil
}
