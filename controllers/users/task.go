package users

import (
	"net/http"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/middleware"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/taskmanager"
	"github.com/Henryno111/deposit-stx/utils"
)

type TaskController struct {
	Tasks *taskmanager.Manager
}

func NewTaskController(tasks *taskmanager.Manager) *TaskController {
	return &TaskController{Tasks: tasks}
}

type SubmitRequest struct {
	SubmissionData string `json:"submission_data" validate:"required,maxlen=500"`
}

// TaskView adds display amounts to a task.
func TaskView(t *models.Task) map[string]interface{} {
	return map[string]interface{}{
		"task":                  t,
		"reward_amount_display": utils.FormatMicro(t.RewardAmount),
	}
}

// GET /v1/tasks/{id}
func (c *TaskController) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathUint(r, "id")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	t, err := c.Tasks.GetTask(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if t == nil {
		utils.WriteError(w, ledger.ErrTaskNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: TaskView(t)})
}

// POST /v1/tasks/{id}/submissions
func (c *TaskController) Submit(w http.ResponseWriter, r *http.Request) {
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
	var req SubmitRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := c.Tasks.SubmitTask(r.Context(), caller, id, req.SubmissionData); err != nil {
		utils.WriteError(w, err)
		return
	}
	sub, err := c.Tasks.GetTaskSubmission(r.Context(), id, caller)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Submission recorded", Data: sub})
}

// GET /v1/tasks/{id}/submissions/{principal}
func (c *TaskController) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathUint(r, "id")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	who, err := utils.PathPrincipal(r, "principal")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	sub, err := c.Tasks.GetTaskSubmission(r.Context(), id, who)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if sub == nil {
		utils.WriteError(w, ledger.ErrSubmissionNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: sub})
}
