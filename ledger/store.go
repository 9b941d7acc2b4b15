// Package ledger provides the authoritative key-value state shared by the
// deposit pool, task manager and reward distributor.
//
// Every mutating operation runs inside Store.Update. Updates are serialized,
// see the writes of earlier updates, and either commit all of their writes or
// none. Each committed update advances the ledger height by one; the height is
// the logical clock recorded on deposits, tasks, submissions and claims.
package ledger

import (
	"context"
	"fmt"
)

// Namespaces. Each domain owns its own and never writes another's.
const (
	NSDeposit     = "deposit"
	NSPool        = "pool"
	NSTask        = "task"
	NSTaskMeta    = "task-meta"
	NSSubmission  = "submission"
	NSClaim       = "claim"
	NSRewardsPaid = "rewards-paid"
	NSFee         = "fee"
	NSAudit       = "audit"
)

// PoolStateKey is the key of the pool singleton in NSPool.
const PoolStateKey = "state"

// Namespaces lists every namespace in a fixed order.
var Namespaces = []string{
	NSDeposit, NSPool, NSTask, NSTaskMeta, NSSubmission,
	NSClaim, NSRewardsPaid, NSFee, NSAudit,
}

// Tx is the view of the ledger inside one Update or View call. Values are
// JSON encoded.
type Tx interface {
	// Height is the height this transaction commits at. In a View it is the
	// last committed height.
	Height() uint64
	// Get decodes the value under (ns, key) into dst and reports whether the
	// key exists.
	Get(ns, key string, dst any) (bool, error)
	Put(ns, key string, v any) error
	// Keys lists keys of ns that start with prefix, in ascending order.
	Keys(ns, prefix string) ([]string, error)
}

type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	Height(ctx context.Context) (uint64, error)
}

// IDKey formats a numeric id so that lexical key order matches numeric order.
func IDKey(id uint64) string {
	return fmt.Sprintf("%020d", id)
}

// PairKey is the key of a record owned by (id, principal).
func PairKey(id uint64, p string) string {
	return IDKey(id) + "/" + p
}
