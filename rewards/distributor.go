// Package rewards pays task rewards net of a platform fee and records one
// claim per (task, recipient) pair.
package rewards

import (
	"context"
	"math"
	"math/bits"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
)

const (
	feeKey = "config"

	DefaultPlatformFee uint64 = 5
	MaxPlatformFee     uint64 = 20
	MaxBatchSize              = 50
)

// Payout is the result of a successful distribution.
type Payout struct {
	NetReward uint64 `json:"net_reward"`
	Fee       uint64 `json:"fee"`
}

type FeeBreakdown struct {
	Fee         uint64 `json:"fee"`
	NetReward   uint64 `json:"net_reward"`
	GrossReward uint64 `json:"gross_reward"`
}

type Distribution struct {
	TaskID    uint64           `json:"task_id"`
	Recipient models.Principal `json:"recipient"`
	Amount    uint64           `json:"amount"`
}

// BatchResult is the outcome of one batch entry. Err is nil when OK.
type BatchResult struct {
	OK     bool
	Payout Payout
	Err    error
}

type Distributor struct {
	store ledger.Store
	guard ledger.Guard
}

func New(store ledger.Store, guard ledger.Guard) *Distributor {
	return &Distributor{store: store, guard: guard}
}

// DistributeReward pays gross minus the platform fee to recipient for task id.
// A pair that has already been paid is refused without touching state.
func (d *Distributor) DistributeReward(ctx context.Context, caller models.Principal, id uint64, recipient models.Principal, gross uint64) (Payout, error) {
	if err := d.guard.RequireOwner(caller); err != nil {
		return Payout{}, err
	}
	if recipient == "" {
		return Payout{}, ledger.ErrInvalidPrincipal
	}

	var out Payout
	err := d.store.Update(ctx, func(tx ledger.Tx) error {
		key := ledger.PairKey(id, string(recipient))
		var claim models.RewardClaim
		if _, err := tx.Get(ledger.NSClaim, key, &claim); err != nil {
			return err
		}
		if claim.Claimed {
			return ledger.ErrAlreadyClaimed
		}
		cfg, err := loadFee(tx)
		if err != nil {
			return err
		}
		var paid uint64
		if _, err := tx.Get(ledger.NSRewardsPaid, string(recipient), &paid); err != nil {
			return err
		}

		b := computeFee(gross, cfg.PlatformFeePercentage)
		if paid > math.MaxUint64-b.NetReward || cfg.TotalFeesCollected > math.MaxUint64-b.Fee {
			return ledger.ErrInvalidAmount
		}
		claim = models.RewardClaim{Amount: b.NetReward, ClaimedAt: tx.Height(), Claimed: true}
		cfg.TotalFeesCollected += b.Fee

		if err := tx.Put(ledger.NSClaim, key, claim); err != nil {
			return err
		}
		if err := tx.Put(ledger.NSRewardsPaid, string(recipient), paid+b.NetReward); err != nil {
			return err
		}
		if err := tx.Put(ledger.NSFee, feeKey, cfg); err != nil {
			return err
		}
		out = Payout{NetReward: b.NetReward, Fee: b.Fee}
		return ledger.AppendEvent(tx, models.AuditEvent{
			Kind: models.EventRewardDistributed, Principal: recipient,
			Amount: b.NetReward, Fee: b.Fee, Ref: ledger.IDKey(id),
		})
	})
	if err != nil {
		return Payout{}, err
	}
	return out, nil
}

// CalculateRewardWithFee previews DistributeReward at the current fee.
func (d *Distributor) CalculateRewardWithFee(ctx context.Context, gross uint64) (FeeBreakdown, error) {
	pct, err := d.GetPlatformFeePercentage(ctx)
	if err != nil {
		return FeeBreakdown{}, err
	}
	return computeFee(gross, pct), nil
}

func (d *Distributor) SetPlatformFee(ctx context.Context, caller models.Principal, pct uint64) error {
	if err := d.guard.RequireOwner(caller); err != nil {
		return err
	}
	if pct > MaxPlatformFee {
		return ledger.ErrInvalidFee
	}
	return d.store.Update(ctx, func(tx ledger.Tx) error {
		cfg, err := loadFee(tx)
		if err != nil {
			return err
		}
		cfg.PlatformFeePercentage = pct
		if err := tx.Put(ledger.NSFee, feeKey, cfg); err != nil {
			return err
		}
		return ledger.AppendEvent(tx, models.AuditEvent{Kind: models.EventPlatformFee, Principal: caller, Amount: pct})
	})
}

// EmergencyWithdraw sweeps amount to recipient outside claim accounting. The
// sweep is only recorded in the audit trail; the returned event identifies it.
func (d *Distributor) EmergencyWithdraw(ctx context.Context, caller models.Principal, amount uint64, recipient models.Principal) (models.AuditEvent, error) {
	if err := d.guard.RequireOwner(caller); err != nil {
		return models.AuditEvent{}, err
	}
	if recipient == "" {
		return models.AuditEvent{}, ledger.ErrInvalidPrincipal
	}
	var ev models.AuditEvent
	err := d.store.Update(ctx, func(tx ledger.Tx) error {
		var err error
		ev, err = ledger.RecordEvent(tx, models.AuditEvent{
			Kind: models.EventEmergencyWithdraw, Principal: recipient, Amount: amount, Ref: string(caller),
		})
		return err
	})
	if err != nil {
		return models.AuditEvent{}, err
	}
	return ev, nil
}

// BatchDistributeRewards applies DistributeReward to each entry in order. Each
// entry commits or fails on its own; one failure does not undo or stop the
// others.
func (d *Distributor) BatchDistributeRewards(ctx context.Context, caller models.Principal, batch []Distribution) ([]BatchResult, error) {
	if err := d.guard.RequireOwner(caller); err != nil {
		return nil, err
	}
	if len(batch) > MaxBatchSize {
		return nil, ledger.ErrInvalidBatch
	}
	results := make([]BatchResult, len(batch))
	for i, item := range batch {
		payout, err := d.DistributeReward(ctx, caller, item.TaskID, item.Recipient, item.Amount)
		results[i] = BatchResult{OK: err == nil, Payout: payout, Err: err}
	}
	return results, nil
}

// GetRewardClaim returns nil when no reward was paid for the pair.
func (d *Distributor) GetRewardClaim(ctx context.Context, id uint64, recipient models.Principal) (*models.RewardClaim, error) {
	var out *models.RewardClaim
	err := d.store.View(ctx, func(tx ledger.Tx) error {
		var c models.RewardClaim
		found, err := tx.Get(ledger.NSClaim, ledger.PairKey(id, string(recipient)), &c)
		if err != nil || !found {
			return err
		}
		out = &c
		return nil
	})
	return out, err
}

func (d *Distributor) GetTotalRewardsPaid(ctx context.Context, who models.Principal) (uint64, error) {
	var paid uint64
	err := d.store.View(ctx, func(tx ledger.Tx) error {
		_, err := tx.Get(ledger.NSRewardsPaid, string(who), &paid)
		return err
	})
	return paid, err
}

func (d *Distributor) GetPlatformFeePercentage(ctx context.Context) (uint64, error) {
	cfg, err := d.feeConfig(ctx)
	return cfg.PlatformFeePercentage, err
}

func (d *Distributor) GetTotalFeesCollected(ctx context.Context) (uint64, error) {
	cfg, err := d.feeConfig(ctx)
	return cfg.TotalFeesCollected, err
}

func (d *Distributor) feeConfig(ctx context.Context) (models.FeeConfig, error) {
	var cfg models.FeeConfig
	err := d.store.View(ctx, func(tx ledger.Tx) error {
		var err error
		cfg, err = loadFee(tx)
		return err
	})
	return cfg, err
}

func loadFee(tx ledger.Tx) (models.FeeConfig, error) {
	cfg := models.FeeConfig{PlatformFeePercentage: DefaultPlatformFee}
	if _, err := tx.Get(ledger.NSFee, feeKey, &cfg); err != nil {
		return models.FeeConfig{}, err
	}
	return cfg, nil
}

// computeFee returns floor(gross*pct/100) as the fee and the remainder as the
// net reward. The product is taken in 128 bits so no gross amount overflows.
// pct must not exceed 100.
func computeFee(gross, pct uint64) FeeBreakdown {
	hi, lo := bits.Mul64(gross, pct)
	fee, _ := bits.Div64(hi, lo, 100)
	return FeeBreakdown{Fee: fee, NetReward: gross - fee, GrossReward: gross}
}
