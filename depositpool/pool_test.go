package depositpool

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
)

const (
	owner models.Principal = "SP-OWNER"
	alice models.Principal = "SP-ALICE"
	bob   models.Principal = "SP-BOB"
)

func newPool(t *testing.T) (*Pool, *ledger.MemoryStore) {
	t.Helper()
	store := ledger.NewMemoryStore()
	return New(store, ledger.NewGuard(owner)), store
}

func mustDeposit(t *testing.T, p *Pool, who models.Principal, amount uint64) {
	t.Helper()
	if err := p.Deposit(context.Background(), who, amount); err != nil {
		t.Fatalf("deposit %d by %s: %v", amount, who, err)
	}
}

func TestDeposit_IncreasesBalanceAndTotal(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t)

	mustDeposit(t, p, alice, 1_000_000)
	mustDeposit(t, p, alice, 2_500_000)
	mustDeposit(t, p, bob, 4_000_000)

	d, err := p.GetDeposit(ctx, alice)
	if err != nil || d == nil {
		t.Fatalf("get deposit: %v %v", d, err)
	}
	if d.Amount != 3_500_000 || !d.Active {
		t.Fatalf("alice deposit = %+v, want 3500000 active", d)
	}
	if d.Timestamp != 2 {
		t.Fatalf("timestamp = %d, want height of the second deposit (2)", d.Timestamp)
	}
	total, _ := p.GetTotalPool(ctx)
	if total != 7_500_000 {
		t.Fatalf("total pool = %d, want 7500000", total)
	}
	n, _ := p.GetDepositorCount(ctx)
	if n != 2 {
		t.Fatalf("depositor count = %d, want 2", n)
	}
}

func TestDeposit_BelowMinimumRejected(t *testing.T) {
	ctx := context.Background()
	p, store := newPool(t)

	if err := p.Deposit(ctx, alice, DefaultMinimumDeposit-1); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if d, _ := p.GetDeposit(ctx, alice); d != nil {
		t.Fatalf("rejected deposit left a record: %+v", d)
	}
	if h, _ := store.Height(ctx); h != 0 {
		t.Fatalf("rejected deposit advanced height to %d", h)
	}
}

func TestDeposit_LockedPoolRejected(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t)
	mustDeposit(t, p, alice, 2_000_000)

	if err := p.SetPoolLock(ctx, owner, true); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := p.Deposit(ctx, alice, 5_000_000); !errors.Is(err, ledger.ErrPoolLocked) {
		t.Fatalf("expected ErrPoolLocked, got %v", err)
	}
	total, _ := p.GetTotalPool(ctx)
	d, _ := p.GetDeposit(ctx, alice)
	if total != 2_000_000 || d.Amount != 2_000_000 {
		t.Fatalf("locked deposit changed state: total=%d amount=%d", total, d.Amount)
	}

	// withdrawals are not affected by the lock
	if err := p.Withdraw(ctx, alice, 1_000_000); err != nil {
		t.Fatalf("withdraw while locked: %v", err)
	}

	if err := p.SetPoolLock(ctx, owner, false); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	mustDeposit(t, p, alice, 1_000_000)
}

func TestWithdraw_MoreThanBalanceRejected(t *testing.T) {
	ctx := context.Background()
	p, store := newPool(t)
	mustDeposit(t, p, alice, 3_000_000)
	before, _ := store.Height(ctx)

	if err := p.Withdraw(ctx, alice, 3_000_001); !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := p.Withdraw(ctx, bob, 1); !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("never-deposited principal: expected ErrInsufficientBalance, got %v", err)
	}
	d, _ := p.GetDeposit(ctx, alice)
	total, _ := p.GetTotalPool(ctx)
	after, _ := store.Height(ctx)
	if d.Amount != 3_000_000 || total != 3_000_000 || after != before {
		t.Fatalf("failed withdraw mutated state: amount=%d total=%d height %d->%d", d.Amount, total, before, after)
	}
}

func TestWithdraw_FullBalanceDeactivates(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t)
	mustDeposit(t, p, alice, 5_000_000)

	if err := p.Withdraw(ctx, alice, 5_000_000); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	d, _ := p.GetDeposit(ctx, alice)
	if d == nil || d.Amount != 0 || d.Active {
		t.Fatalf("deposit after full withdraw = %+v, want amount 0 inactive", d)
	}
	if n, _ := p.GetDepositorCount(ctx); n != 0 {
		t.Fatalf("inactive deposit still counted: %d", n)
	}
	if total, _ := p.GetTotalPool(ctx); total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}

	// a zero withdrawal only refreshes the timestamp
	if err := p.Withdraw(ctx, alice, 0); err != nil {
		t.Fatalf("zero withdraw: %v", err)
	}
	d2, _ := p.GetDeposit(ctx, alice)
	if d2.Timestamp <= d.Timestamp {
		t.Fatalf("zero withdraw did not refresh timestamp: %d -> %d", d.Timestamp, d2.Timestamp)
	}
}

func TestDeposit_OverflowRejected(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t)
	mustDeposit(t, p, alice, math.MaxUint64-1)
	if err := p.Deposit(ctx, bob, 2_000_000); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected overflow to be ErrInvalidAmount, got %v", err)
	}
	if total, _ := p.GetTotalPool(ctx); total != math.MaxUint64-1 {
		t.Fatalf("total changed on overflow: %d", total)
	}
}

func TestAdminOperations_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t)

	if err := p.SetPoolLock(ctx, alice, true); !errors.Is(err, ledger.ErrOwnerOnly) {
		t.Fatalf("SetPoolLock by non-owner: %v", err)
	}
	if err := p.SetMinimumDeposit(ctx, alice, 1); !errors.Is(err, ledger.ErrOwnerOnly) {
		t.Fatalf("SetMinimumDeposit by non-owner: %v", err)
	}
	if locked, _ := p.IsPoolLocked(ctx); locked {
		t.Fatalf("non-owner lock took effect")
	}

	if err := p.SetMinimumDeposit(ctx, owner, 5_000_000); err != nil {
		t.Fatalf("set minimum: %v", err)
	}
	if min, _ := p.GetMinimumDeposit(ctx); min != 5_000_000 {
		t.Fatalf("minimum = %d, want 5000000", min)
	}
	if err := p.Deposit(ctx, alice, 4_999_999); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("deposit under new minimum: %v", err)
	}
}

func TestStats_Defaults(t *testing.T) {
	p, _ := newPool(t)
	stats, err := p.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalPool != 0 || stats.DepositorCount != 0 || stats.MinimumDeposit != DefaultMinimumDeposit || stats.Locked {
		t.Fatalf("unexpected defaults: %+v", stats)
	}
}

func TestMutationsAppendAuditEvents(t *testing.T) {
	ctx := context.Background()
	p, store := newPool(t)
	mustDeposit(t, p, alice, 2_000_000)
	if err := p.Withdraw(ctx, alice, 500_000); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	events, err := ledger.RecentEvents(ctx, store, 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 2 || events[0].Kind != models.EventWithdraw || events[1].Kind != models.EventDeposit {
		t.Fatalf("unexpected trail: %+v", events)
	}
	if events[0].Amount != 500_000 || events[0].Principal != alice {
		t.Fatalf("withdraw event = %+v", events[0])
	}
}

func TestListDeposits_IncludesInactive(t *testing.T) {
	ctx := context.Background()
	p, _ := newPool(t)
	mustDeposit(t, p, bob, 2_000_000)
	mustDeposit(t, p, alice, 3_000_000)
	if err := p.Withdraw(ctx, bob, 2_000_000); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	list, err := p.ListDeposits(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Principal != alice || list[1].Principal != bob {
		t.Fatalf("unexpected order %+v", list)
	}
	if !list[0].Active || list[0].Amount != 3_000_000 || list[1].Active || list[1].Amount != 0 {
		t.Fatalf("unexpected records %+v", list)
	}
}
