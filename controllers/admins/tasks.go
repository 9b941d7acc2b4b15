package admins

import (
	"context"
	"net/http"

	"github.com/Henryno111/deposit-stx/controllers/users"
	"github.com/Henryno111/deposit-stx/middleware"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/taskmanager"
	"github.com/Henryno111/deposit-stx/utils"
	"github.com/Henryno111/deposit-stx/workflow"
)

type TaskController struct {
	Tasks    *taskmanager.Manager
	Workflow *workflow.Orchestrator
}

func NewTaskController(tasks *taskmanager.Manager, wf *workflow.Orchestrator) *TaskController {
	return &TaskController{Tasks: tasks, Workflow: wf}
}

type CreateTaskRequest struct {
	Title        string `json:"title" validate:"required,maxlen=100"`
	Description  string `json:"description" validate:"maxlen=500"`
	RewardAmount uint64 `json:"reward_amount"`
}

type SubmitterRequest struct {
	Submitter string `json:"submitter" validate:"required,principal"`
}

// POST /v1/admin/tasks
func (c *TaskController) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req CreateTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	id, err := c.Tasks.CreateTask(r.Context(), caller, req.Title, req.Description, req.RewardAmount)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	t, err := c.Tasks.GetTask(r.Context(), id)
	if err != nil || t == nil {
		utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: map[string]interface{}{"id": id}})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: users.TaskView(t)})
}

// GET /v1/admin/tasks/{id}/submissions
func (c *TaskController) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathUint(r, "id")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	subs, err := c.Tasks.ListSubmissions(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: subs})
}

// PUT /v1/admin/tasks/{id}/approve
func (c *TaskController) Approve(w http.ResponseWriter, r *http.Request) {
	c.adjudicate(w, r, c.Tasks.ApproveSubmission, "Submission approved")
}

// PUT /v1/admin/tasks/{id}/reject
func (c *TaskController) Reject(w http.ResponseWriter, r *http.Request) {
	c.adjudicate(w, r, c.Tasks.RejectSubmission, "Submission rejected")
}

type adjudicateFunc func(ctx context.Context, caller models.Principal, id uint64, submitter models.Principal) error

func (c *TaskController) adjudicate(w http.ResponseWriter, r *http.Request, op adjudicateFunc, msg string) {
	caller, id, submitter, ok := c.submitterArgs(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), caller, id, submitter); err != nil {
		utils.WriteError(w, err)
		return
	}
	sub, err := c.Tasks.GetTaskSubmission(r.Context(), id, submitter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: msg, Data: sub})
}

// PUT /v1/admin/tasks/{id}/cancel
func (c *TaskController) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	id, err := utils.PathUint(r, "id")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	if err := c.Tasks.CancelTask(r.Context(), caller, id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task cancelled", Data: map[string]interface{}{"id": id}})
}

// PUT /v1/admin/tasks/{id}/complete approves the submission and pays the
// task reward to the submitter.
func (c *TaskController) Complete(w http.ResponseWriter, r *http.Request) {
	caller, id, submitter, ok := c.submitterArgs(w, r)
	if !ok {
		return
	}
	payout, err := c.Workflow.CompleteTask(r.Context(), caller, id, submitter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Task completed",
		Data: map[string]interface{}{
			"task_id":            id,
			"recipient":          submitter,
			"net_reward":         payout.NetReward,
			"fee":                payout.Fee,
			"net_reward_display": utils.FormatMicro(payout.NetReward),
			"fee_display":        utils.FormatMicro(payout.Fee),
		},
	})
}

func (c *TaskController) submitterArgs(w http.ResponseWriter, r *http.Request) (models.Principal, uint64, models.Principal, bool) {
	caller, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return "", 0, "", false
	}
	id, err := utils.PathUint(r, "id")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return "", 0, "", false
	}
	var req SubmitterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return "", 0, "", false
	}
	return caller, id, models.Principal(req.Submitter), true
}
