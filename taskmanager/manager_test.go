package taskmanager

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
)

const (
	owner models.Principal = "SP-OWNER"
	alice models.Principal = "SP-ALICE"
	bob   models.Principal = "SP-BOB"
)

func newManager(t *testing.T) (*Manager, *ledger.MemoryStore) {
	t.Helper()
	store := ledger.NewMemoryStore()
	return New(store, ledger.NewGuard(owner)), store
}

func mustCreate(t *testing.T, m *Manager, reward uint64) uint64 {
	t.Helper()
	id, err := m.CreateTask(context.Background(), owner, "Write docs", "Document the deposit flow", reward)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return id
}

func mustSubmit(t *testing.T, m *Manager, who models.Principal, id uint64) {
	t.Helper()
	if err := m.SubmitTask(context.Background(), who, id, "https://example.com/pr/1"); err != nil {
		t.Fatalf("submit by %s: %v", who, err)
	}
}

func TestCreateTask_SequentialIDs(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	for want := uint64(0); want < 3; want++ {
		if got := mustCreate(t, m, 10_000_000); got != want {
			t.Fatalf("task id = %d, want %d", got, want)
		}
	}
	if n, _ := m.GetTaskCount(ctx); n != 3 {
		t.Fatalf("task count = %d, want 3", n)
	}
	task, err := m.GetTask(ctx, 1)
	if err != nil || task == nil {
		t.Fatalf("get task: %v %v", task, err)
	}
	if task.Status != models.TaskActive || task.Creator != owner || task.CreatedAt != 2 {
		t.Fatalf("unexpected task %+v", task)
	}
	if task.CompletedBy != nil || task.CompletedAt != nil {
		t.Fatalf("new task carries completion data: %+v", task)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	if _, err := m.CreateTask(ctx, owner, "t", "d", 0); !errors.Is(err, ledger.ErrInvalidTaskData) {
		t.Fatalf("zero reward: expected ErrInvalidTaskData, got %v", err)
	}
	if _, err := m.CreateTask(ctx, owner, "", "d", 1); !errors.Is(err, ledger.ErrInvalidTaskData) {
		t.Fatalf("empty title: expected ErrInvalidTaskData, got %v", err)
	}
	if _, err := m.CreateTask(ctx, owner, strings.Repeat("x", MaxTitleLength+1), "d", 1); !errors.Is(err, ledger.ErrInvalidTaskData) {
		t.Fatalf("long title: expected ErrInvalidTaskData, got %v", err)
	}
	if _, err := m.CreateTask(ctx, owner, "t", "café", 1); !errors.Is(err, ledger.ErrInvalidTaskData) {
		t.Fatalf("non-ascii description: expected ErrInvalidTaskData, got %v", err)
	}
	if _, err := m.CreateTask(ctx, alice, "t", "d", 1); !errors.Is(err, ledger.ErrOwnerOnly) {
		t.Fatalf("non-owner: expected ErrOwnerOnly, got %v", err)
	}
	if n, _ := m.GetTaskCount(ctx); n != 0 {
		t.Fatalf("rejected creates consumed ids: %d", n)
	}
	if h, _ := store.Height(ctx); h != 0 {
		t.Fatalf("rejected creates advanced height: %d", h)
	}
	// maximum lengths are accepted
	if _, err := m.CreateTask(ctx, owner, strings.Repeat("x", MaxTitleLength), strings.Repeat("y", MaxDescriptionLength), 1); err != nil {
		t.Fatalf("max lengths rejected: %v", err)
	}
}

func TestSubmitTask_UnknownTask(t *testing.T) {
	m, _ := newManager(t)
	if err := m.SubmitTask(context.Background(), alice, 7, "data"); !errors.Is(err, ledger.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestSubmitTask_ResubmitOverwrites(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	id := mustCreate(t, m, 1_000_000)
	mustSubmit(t, m, alice, id)
	if err := m.SubmitTask(ctx, alice, id, "second attempt"); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	sub, _ := m.GetTaskSubmission(ctx, id, alice)
	if sub == nil || sub.SubmissionData != "second attempt" || sub.Status != models.SubmissionPending || sub.SubmittedAt != 3 {
		t.Fatalf("unexpected submission %+v", sub)
	}
	subs, err := m.ListSubmissions(ctx, id)
	if err != nil || len(subs) != 1 {
		t.Fatalf("list: %v %v", subs, err)
	}
}

func TestApprove_CompletesTask(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	id := mustCreate(t, m, 10_000_000)
	mustSubmit(t, m, alice, id)
	mustSubmit(t, m, bob, id)

	if err := m.ApproveSubmission(ctx, alice, id, alice); !errors.Is(err, ledger.ErrOwnerOnly) {
		t.Fatalf("self approval: expected ErrOwnerOnly, got %v", err)
	}
	if err := m.ApproveSubmission(ctx, owner, id, alice); err != nil {
		t.Fatalf("approve: %v", err)
	}
	task, _ := m.GetTask(ctx, id)
	if task.Status != models.TaskCompleted || task.CompletedBy == nil || *task.CompletedBy != alice || task.CompletedAt == nil || *task.CompletedAt != 4 {
		t.Fatalf("task not completed by alice: %+v", task)
	}
	sub, _ := m.GetTaskSubmission(ctx, id, alice)
	if sub.Status != models.SubmissionApproved {
		t.Fatalf("submission status = %s", sub.Status)
	}

	// terminal: nothing moves the task again
	if err := m.RejectSubmission(ctx, owner, id, alice); !errors.Is(err, ledger.ErrTaskNotActive) {
		t.Fatalf("reject after completion: %v", err)
	}
	if err := m.ApproveSubmission(ctx, owner, id, bob); !errors.Is(err, ledger.ErrTaskNotActive) {
		t.Fatalf("second approval: %v", err)
	}
	if err := m.SubmitTask(ctx, bob, id, "late"); !errors.Is(err, ledger.ErrTaskNotActive) {
		t.Fatalf("submit after completion: %v", err)
	}
	if err := m.CancelTask(ctx, owner, id); !errors.Is(err, ledger.ErrTaskNotActive) {
		t.Fatalf("cancel after completion: %v", err)
	}
	after, _ := m.GetTask(ctx, id)
	if after.Status != models.TaskCompleted || *after.CompletedBy != alice {
		t.Fatalf("terminal task changed: %+v", after)
	}
}

func TestApprove_RequiresPendingSubmission(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	id := mustCreate(t, m, 1_000_000)

	if err := m.ApproveSubmission(ctx, owner, id, alice); !errors.Is(err, ledger.ErrSubmissionNotFound) {
		t.Fatalf("approve without submission: %v", err)
	}
	if err := m.ApproveSubmission(ctx, owner, id+1, alice); !errors.Is(err, ledger.ErrTaskNotFound) {
		t.Fatalf("approve unknown task: %v", err)
	}
	mustSubmit(t, m, alice, id)
	if err := m.RejectSubmission(ctx, owner, id, alice); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := m.ApproveSubmission(ctx, owner, id, alice); !errors.Is(err, ledger.ErrSubmissionNotPending) {
		t.Fatalf("approve rejected submission: %v", err)
	}
}

func TestReject_TaskStaysActive(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	id := mustCreate(t, m, 1_000_000)
	mustSubmit(t, m, alice, id)

	if err := m.RejectSubmission(ctx, owner, id, alice); err != nil {
		t.Fatalf("reject: %v", err)
	}
	task, _ := m.GetTask(ctx, id)
	if task.Status != models.TaskActive {
		t.Fatalf("task status after reject = %s", task.Status)
	}
	sub, _ := m.GetTaskSubmission(ctx, id, alice)
	if sub.Status != models.SubmissionRejected {
		t.Fatalf("submission status = %s", sub.Status)
	}

	// another principal may submit, and alice may try again
	mustSubmit(t, m, bob, id)
	mustSubmit(t, m, alice, id)
	if err := m.ApproveSubmission(ctx, owner, id, bob); err != nil {
		t.Fatalf("approve bob: %v", err)
	}
	subs, _ := m.ListSubmissions(ctx, id)
	if len(subs) != 2 || subs[0].Submitter != alice || subs[1].Submitter != bob {
		t.Fatalf("unexpected submissions %+v", subs)
	}
}

func TestCancelTask(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	id := mustCreate(t, m, 1_000_000)
	mustSubmit(t, m, alice, id)

	if err := m.CancelTask(ctx, alice, id); !errors.Is(err, ledger.ErrOwnerOnly) {
		t.Fatalf("non-owner cancel: %v", err)
	}
	if err := m.CancelTask(ctx, owner, id); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	task, _ := m.GetTask(ctx, id)
	if task.Status != models.TaskCancelled || task.CompletedBy != nil || task.CompletedAt != nil {
		t.Fatalf("cancelled task = %+v", task)
	}
	if err := m.ApproveSubmission(ctx, owner, id, alice); !errors.Is(err, ledger.ErrTaskNotActive) {
		t.Fatalf("approve after cancel: %v", err)
	}
	if err := m.CancelTask(ctx, owner, id); !errors.Is(err, ledger.ErrTaskNotActive) {
		t.Fatalf("double cancel: %v", err)
	}
	if err := m.CancelTask(ctx, owner, 99); !errors.Is(err, ledger.ErrTaskNotFound) {
		t.Fatalf("cancel unknown: %v", err)
	}
}

func TestReadAccessors_Absent(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	if task, err := m.GetTask(ctx, 0); task != nil || err != nil {
		t.Fatalf("absent task = %v, %v", task, err)
	}
	if sub, err := m.GetTaskSubmission(ctx, 0, alice); sub != nil || err != nil {
		t.Fatalf("absent submission = %v, %v", sub, err)
	}
	if _, err := m.ListSubmissions(ctx, 0); !errors.Is(err, ledger.ErrTaskNotFound) {
		t.Fatalf("list for unknown task: %v", err)
	}
}
