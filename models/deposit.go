package models

// Principal identifies an account that can hold balances and invoke operations.
type Principal string

// Deposit is the staked balance of one principal. It is never removed; a fully
// withdrawn deposit stays with Amount 0 and Active false.
type Deposit struct {
	Amount    uint64 `json:"amount"`
	Timestamp uint64 `json:"timestamp"`
	Active    bool   `json:"active"`
}

// PoolState is the pool-wide singleton.
type PoolState struct {
	TotalPool      uint64 `json:"total_pool"`
	Locked         bool   `json:"pool_locked"`
	MinimumDeposit uint64 `json:"minimum_deposit"`
}

type PoolStats struct {
	TotalPool      uint64 `json:"total_pool"`
	DepositorCount uint64 `json:"depositor_count"`
	MinimumDeposit uint64 `json:"minimum_deposit"`
	Locked         bool   `json:"pool_locked"`
}
