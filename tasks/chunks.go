package tasks

import (
	"context"

	"github.com/peter-xbs/FSM/redis"
	"github.com/peter-xbs/FSM/utils/maps"
)

const ChunksDB redis.DB = 2

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

// RelexTaskName identifies this worker in task statuses and failure lists.
const RelexTaskName = "relex"

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted || s == TaskStatusProcessing
}

type ChunkTask struct {
	maps.BaseDocument `json:"-"`
	DocID             string            `json:"document_id"`
	JobID             string            `json:"job_id"`
	TextFileKey       string            `json:"text_file_key"`
	TaskStatuses      ChunkTaskStatuses `json:"task_statuses"`
}

type ChunkTaskStatuses struct {
	Relex ChunkTaskInfo `json:"relex"`
}

type ChunkTaskInfo struct {
	ResultsFileKey    string     `json:"results_file_key"`
	StartedAt         *string    `json:"started_at"`
	CompletedAt       *string    `json:"completed_at"`
	Attempts          int        `json:"attempts"`
	Status            TaskStatus `json:"status"`
	Dependencies      []string   `json:"dependencies"`
	ModelDependencies []float64  `json:"model_dependencies"`
	ErrorMessages     []string   `json:"error_messages"`
}

type ChunkTasks struct {
	client *redis.Client
}

func (tasks ChunkTasks) Get(ctx context.Context, redisKey string) (*ChunkTask, error) {
	var task ChunkTask
	if err := tasks.client.GetPartialDocument(ctx, redisKey, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks ChunkTasks) Update(ctx context.Context, redisKey string, updateFunc func(task *ChunkTask)) error {
	var task ChunkTask
	return redis.UpdatePartialDocument(ctx, tasks.client, redisKey, &task, updateFunc)
}
