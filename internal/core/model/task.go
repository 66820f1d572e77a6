package model

import "time"

type TaskType string

const (
	TaskSearch     TaskType = "search"
	TaskAnalyze    TaskType = "analyze"
	TaskSummarize  TaskType = "summarize"
	TaskExtract    TaskType = "extract"
	TaskLink       TaskType = "link"
	TaskCreateNode TaskType = "create_node"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskExecuting TaskStatus = "executing"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

type Task struct {
	ID          string     `json:"id"`
	Type        TaskType   `json:"type"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Timestamp   time.Time  `json:"timestamp"`
	Result      any        `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
}

func NewTask(id string, taskType TaskType, description string) Task {
	return Task{
		ID:          id,
		Type:        taskType,
		Description: description,
		Status:      TaskPending,
		Timestamp:   time.Now().UTC(),
	}
}
