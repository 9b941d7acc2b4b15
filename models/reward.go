package models

// RewardClaim marks that the reward for a (task, recipient) pair has been paid.
// Amount is the net amount after the platform fee.
type RewardClaim struct {
	Amount    uint64 `json:"amount"`
	ClaimedAt uint64 `json:"claimed_at"`
	Claimed   bool   `json:"claimed"`
}

type FeeConfig struct {
	PlatformFeePercentage uint64 `json:"platform_fee_percentage"`
	TotalFeesCollected    uint64 `json:"total_fees_collected"`
}
