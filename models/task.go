package models

type TaskStatus string

const (
	TaskActive    TaskStatus = "active"
	TaskCompleted TaskStatus = "completed"
	TaskCancelled TaskStatus = "cancelled"
)

type Task struct {
	ID           uint64     `json:"id"`
	Creator      Principal  `json:"creator"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	RewardAmount uint64     `json:"reward_amount"`
	Status       TaskStatus `json:"status"`
	CreatedAt    uint64     `json:"created_at"`
	CompletedBy  *Principal `json:"completed_by"`
	CompletedAt  *uint64    `json:"completed_at"`
}

// Terminal reports whether the task accepts no further lifecycle transitions.
func (t *Task) Terminal() bool {
	return t.Status == TaskCompleted || t.Status == TaskCancelled
}

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

type Submission struct {
	TaskID         uint64           `json:"task_id"`
	Submitter      Principal        `json:"submitter"`
	SubmissionData string           `json:"submission_data"`
	SubmittedAt    uint64           `json:"submitted_at"`
	Status         SubmissionStatus `json:"status"`
}
