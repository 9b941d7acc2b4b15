// Package taskmanager defines tasks and adjudicates submissions against them.
//
// A task starts active and moves to completed (by approving a submission) or
// cancelled. Both are terminal: a terminal task accepts no further
// submissions, approvals, rejections or cancellation.
package taskmanager

import (
	"context"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
)

const nonceKey = "nonce"

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxSubmissionLength  = 500
)

type Manager struct {
	store ledger.Store
	guard ledger.Guard
}

func New(store ledger.Store, guard ledger.Guard) *Manager {
	return &Manager{store: store, guard: guard}
}

// CreateTask stores a new active task and returns its id. Ids are allocated
// sequentially from 0.
func (m *Manager) CreateTask(ctx context.Context, caller models.Principal, title, description string, reward uint64) (uint64, error) {
	if err := m.guard.RequireOwner(caller); err != nil {
		return 0, err
	}
	if reward == 0 || title == "" ||
		!validText(title, MaxTitleLength) || !validText(description, MaxDescriptionLength) {
		return 0, ledger.ErrInvalidTaskData
	}

	var id uint64
	err := m.store.Update(ctx, func(tx ledger.Tx) error {
		if _, err := tx.Get(ledger.NSTaskMeta, nonceKey, &id); err != nil {
			return err
		}
		task := models.Task{
			ID:           id,
			Creator:      caller,
			Title:        title,
			Description:  description,
			RewardAmount: reward,
			Status:       models.TaskActive,
			CreatedAt:    tx.Height(),
		}
		if err := tx.Put(ledger.NSTask, ledger.IDKey(id), task); err != nil {
			return err
		}
		if err := tx.Put(ledger.NSTaskMeta, nonceKey, id+1); err != nil {
			return err
		}
		return ledger.AppendEvent(tx, models.AuditEvent{
			Kind: models.EventTaskCreated, Principal: caller, Amount: reward, Ref: ledger.IDKey(id),
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SubmitTask records the caller's submission as pending. A later submission by
// the same caller replaces the earlier one.
func (m *Manager) SubmitTask(ctx context.Context, caller models.Principal, id uint64, data string) error {
	if caller == "" {
		return ledger.ErrInvalidPrincipal
	}
	if !validText(data, MaxSubmissionLength) {
		return ledger.ErrInvalidTaskData
	}
	return m.store.Update(ctx, func(tx ledger.Tx) error {
		task, err := loadTask(tx, id)
		if err != nil {
			return err
		}
		if task.Terminal() {
			return ledger.ErrTaskNotActive
		}
		sub := models.Submission{
			TaskID:         id,
			Submitter:      caller,
			SubmissionData: data,
			SubmittedAt:    tx.Height(),
			Status:         models.SubmissionPending,
		}
		if err := tx.Put(ledger.NSSubmission, ledger.PairKey(id, string(caller)), sub); err != nil {
			return err
		}
		return ledger.AppendEvent(tx, models.AuditEvent{
			Kind: models.EventTaskSubmitted, Principal: caller, Ref: ledger.IDKey(id),
		})
	})
}

// ApproveSubmission approves the submitter's pending submission and completes
// the task in their name.
func (m *Manager) ApproveSubmission(ctx context.Context, caller models.Principal, id uint64, submitter models.Principal) error {
	if err := m.guard.RequireOwner(caller); err != nil {
		return err
	}
	return m.store.Update(ctx, func(tx ledger.Tx) error {
		task, sub, err := loadPending(tx, id, submitter)
		if err != nil {
			return err
		}
		height := tx.Height()
		sub.Status = models.SubmissionApproved
		task.Status = models.TaskCompleted
		task.CompletedBy = &submitter
		task.CompletedAt = &height

		if err := tx.Put(ledger.NSSubmission, ledger.PairKey(id, string(submitter)), sub); err != nil {
			return err
		}
		if err := tx.Put(ledger.NSTask, ledger.IDKey(id), task); err != nil {
			return err
		}
		return ledger.AppendEvent(tx, models.AuditEvent{
			Kind: models.EventTaskApproved, Principal: submitter, Amount: task.RewardAmount, Ref: ledger.IDKey(id),
		})
	})
}

// RejectSubmission rejects the submitter's pending submission. The task stays
// active.
func (m *Manager) RejectSubmission(ctx context.Context, caller models.Principal, id uint64, submitter models.Principal) error {
	if err := m.guard.RequireOwner(caller); err != nil {
		return err
	}
	return m.store.Update(ctx, func(tx ledger.Tx) error {
		_, sub, err := loadPending(tx, id, submitter)
		if err != nil {
			return err
		}
		sub.Status = models.SubmissionRejected
		if err := tx.Put(ledger.NSSubmission, ledger.PairKey(id, string(submitter)), sub); err != nil {
			return err
		}
		return ledger.AppendEvent(tx, models.AuditEvent{
			Kind: models.EventTaskRejected, Principal: submitter, Ref: ledger.IDKey(id),
		})
	})
}

func (m *Manager) CancelTask(ctx context.Context, caller models.Principal, id uint64) error {
	if err := m.guard.RequireOwner(caller); err != nil {
		return err
	}
	return m.store.Update(ctx, func(tx ledger.Tx) error {
		task, err := loadTask(tx, id)
		if err != nil {
			return err
		}
		if task.Terminal() {
			return ledger.ErrTaskNotActive
		}
		task.Status = models.TaskCancelled
		if err := tx.Put(ledger.NSTask, ledger.IDKey(id), task); err != nil {
			return err
		}
		return ledger.AppendEvent(tx, models.AuditEvent{
			Kind: models.EventTaskCancelled, Principal: caller, Ref: ledger.IDKey(id),
		})
	})
}

// GetTask returns nil for an unknown id.
func (m *Manager) GetTask(ctx context.Context, id uint64) (*models.Task, error) {
	var out *models.Task
	err := m.store.View(ctx, func(tx ledger.Tx) error {
		var t models.Task
		found, err := tx.Get(ledger.NSTask, ledger.IDKey(id), &t)
		if err != nil || !found {
			return err
		}
		out = &t
		return nil
	})
	return out, err
}

// GetTaskSubmission returns nil when the submitter has not submitted.
func (m *Manager) GetTaskSubmission(ctx context.Context, id uint64, submitter models.Principal) (*models.Submission, error) {
	var out *models.Submission
	err := m.store.View(ctx, func(tx ledger.Tx) error {
		var s models.Submission
		found, err := tx.Get(ledger.NSSubmission, ledger.PairKey(id, string(submitter)), &s)
		if err != nil || !found {
			return err
		}
		out = &s
		return nil
	})
	return out, err
}

// ListSubmissions returns every submission recorded for the task, ordered by
// submitter.
func (m *Manager) ListSubmissions(ctx context.Context, id uint64) ([]models.Submission, error) {
	subs := []models.Submission{}
	err := m.store.View(ctx, func(tx ledger.Tx) error {
		if _, err := loadTask(tx, id); err != nil {
			return err
		}
		keys, err := tx.Keys(ledger.NSSubmission, ledger.IDKey(id)+"/")
		if err != nil {
			return err
		}
		for _, k := range keys {
			var s models.Submission
			if _, err := tx.Get(ledger.NSSubmission, k, &s); err != nil {
				return err
			}
			subs = append(subs, s)
		}
		return nil
	})
	return subs, err
}

// GetTaskCount is the number of tasks created so far, which is also the next id.
func (m *Manager) GetTaskCount(ctx context.Context) (uint64, error) {
	var n uint64
	err := m.store.View(ctx, func(tx ledger.Tx) error {
		_, err := tx.Get(ledger.NSTaskMeta, nonceKey, &n)
		return err
	})
	return n, err
}

func loadTask(tx ledger.Tx, id uint64) (models.Task, error) {
	var task models.Task
	found, err := tx.Get(ledger.NSTask, ledger.IDKey(id), &task)
	if err != nil {
		return task, err
	}
	if !found {
		return task, ledger.ErrTaskNotFound
	}
	return task, nil
}

func loadPending(tx ledger.Tx, id uint64, submitter models.Principal) (models.Task, models.Submission, error) {
	var sub models.Submission
	task, err := loadTask(tx, id)
	if err != nil {
		return task, sub, err
	}
	if task.Terminal() {
		return task, sub, ledger.ErrTaskNotActive
	}
	found, err := tx.Get(ledger.NSSubmission, ledger.PairKey(id, string(submitter)), &sub)
	if err != nil {
		return task, sub, err
	}
	if !found {
		return task, sub, ledger.ErrSubmissionNotFound
	}
	if sub.Status != models.SubmissionPending {
		return task, sub, ledger.ErrSubmissionNotPending
	}
	return task, sub, nil
}

// validText accepts printable ASCII, newline and tab, up to max bytes.
func validText(s string, max int) bool {
	if len(s) > max {
		return false
	}
	for i := 0; i < len(s); i++ {
		if c := s[i]; (c < 0x20 && c != '\n' && c != '\t') || c > 0x7e {
			return false
		}
	}
	return true
}
