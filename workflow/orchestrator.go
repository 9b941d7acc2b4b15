// Package workflow sequences the task manager and the reward distributor for
// the admin flow submit -> approve -> pay. Neither module calls the other; the
// orchestrator reads the approved task and hands its reward to the distributor.
package workflow

import (
	"context"
	"fmt"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/rewards"
)

type TaskApprover interface {
	ApproveSubmission(ctx context.Context, caller models.Principal, id uint64, submitter models.Principal) error
	GetTask(ctx context.Context, id uint64) (*models.Task, error)
}

type RewardPayer interface {
	DistributeReward(ctx context.Context, caller models.Principal, id uint64, recipient models.Principal, gross uint64) (rewards.Payout, error)
}

type Orchestrator struct {
	tasks   TaskApprover
	rewards RewardPayer
}

func New(tasks TaskApprover, payer RewardPayer) *Orchestrator {
	return &Orchestrator{tasks: tasks, rewards: payer}
}

// CompleteTask approves the submitter's submission and pays them the task's
// reward amount. The two steps are separate ledger operations: when payment
// fails after approval the task stays completed and the error says so, and
// the reward can be paid later with a direct distribution.
func (o *Orchestrator) CompleteTask(ctx context.Context, caller models.Principal, id uint64, submitter models.Principal) (rewards.Payout, error) {
	if err := o.tasks.ApproveSubmission(ctx, caller, id, submitter); err != nil {
		return rewards.Payout{}, err
	}
	task, err := o.tasks.GetTask(ctx, id)
	if err != nil {
		return rewards.Payout{}, fmt.Errorf("task %d approved, reading reward: %w", id, err)
	}
	if task == nil {
		return rewards.Payout{}, ledger.ErrTaskNotFound
	}
	payout, err := o.rewards.DistributeReward(ctx, caller, id, submitter, task.RewardAmount)
	if err != nil {
		return rewards.Payout{}, fmt.Errorf("task %d approved, paying reward: %w", id, err)
	}
	return payout, nil
}
