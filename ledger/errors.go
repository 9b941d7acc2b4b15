package ledger

import "errors"

// Authorization
var ErrOwnerOnly = errors.New("owner-only")

// Validation
var (
	ErrInvalidAmount    = errors.New("invalid-amount")
	ErrInvalidTaskData  = errors.New("invalid-task-data")
	ErrInvalidFee       = errors.New("invalid-fee")
	ErrInvalidPrincipal = errors.New("invalid-principal")
	ErrInvalidBatch     = errors.New("invalid-batch")
)

// State conflict
var (
	ErrInsufficientBalance  = errors.New("insufficient-balance")
	ErrTaskNotFound         = errors.New("task-not-found")
	ErrTaskNotActive        = errors.New("task-not-active")
	ErrSubmissionNotFound   = errors.New("submission-not-found")
	ErrSubmissionNotPending = errors.New("submission-not-pending")
	ErrAlreadyClaimed       = errors.New("already-claimed")
)

// Lock
var ErrPoolLocked = errors.New("pool-locked")

var (
	ErrReadOnly           = errors.New("ledger: write in read-only transaction")
	ErrInvariantViolation = errors.New("ledger: invariant violation")
)

// Category groups ledger errors the way callers surface them.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryAuthorization
	CategoryValidation
	CategoryNotFound
	CategoryConflict
	CategoryLocked
)

var categories = []struct {
	err error
	cat Category
}{
	{ErrOwnerOnly, CategoryAuthorization},
	{ErrInvalidAmount, CategoryValidation},
	{ErrInvalidTaskData, CategoryValidation},
	{ErrInvalidFee, CategoryValidation},
	{ErrInvalidPrincipal, CategoryValidation},
	{ErrInvalidBatch, CategoryValidation},
	{ErrTaskNotFound, CategoryNotFound},
	{ErrSubmissionNotFound, CategoryNotFound},
	{ErrInsufficientBalance, CategoryConflict},
	{ErrTaskNotActive, CategoryConflict},
	{ErrSubmissionNotPending, CategoryConflict},
	{ErrAlreadyClaimed, CategoryConflict},
	{ErrPoolLocked, CategoryLocked},
}

// Classify returns the category and kind name of a ledger error. Errors that
// are not ledger outcomes (storage failures, cancelled contexts) report
// CategoryUnknown and an empty kind.
func Classify(err error) (Category, string) {
	for _, c := range categories {
		if errors.Is(err, c.err) {
			return c.cat, c.err.Error()
		}
	}
	return CategoryUnknown, ""
}
