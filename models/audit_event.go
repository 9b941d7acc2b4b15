package models

// Audit event kinds.
const (
	EventDeposit           = "deposit"
	EventWithdraw          = "withdraw"
	EventPoolLock          = "set-pool-lock"
	EventMinimumDeposit    = "set-minimum-deposit"
	EventTaskCreated       = "create-task"
	EventTaskSubmitted     = "submit-task"
	EventTaskApproved      = "approve-submission"
	EventTaskRejected      = "reject-submission"
	EventTaskCancelled     = "cancel-task"
	EventRewardDistributed = "distribute-reward"
	EventPlatformFee       = "set-platform-fee"
	EventEmergencyWithdraw = "emergency-withdraw"
)

// AuditEvent is appended to the ledger in the same transaction as the change it
// describes.
type AuditEvent struct {
	ID        string    `json:"id"`
	Height    uint64    `json:"height"`
	Kind      string    `json:"kind"`
	Principal Principal `json:"principal"`
	Amount    uint64    `json:"amount"`
	Fee       uint64    `json:"fee,omitempty"`
	Ref       string    `json:"ref,omitempty"`
}
