package worker

import (
	"fmt"

	"github.com/peter-xbs/FSM/tasks"
)

type redisTransactions interface {
	getChunkTask(task *Task) (*tasks.ChunkTask, error)
	getJobTask(task *Task) (*tasks.JobTask, error)
	getDocTask(task *Task) (*tasks.DocumentTaskCached, error)
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) updateStatus(task *Task, update func(info *tasks.ChunkTaskInfo)) error {
	return wrapper.tasksClient.Chunks.Update(task.ctx, task.redisKey, func(chunkTask *tasks.ChunkTask) {
		update(&chunkTask.TaskStatuses.Relex)
	})
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	return wrapper.updateStatus(task, func(info *tasks.ChunkTaskInfo) {
		info.Status = tasks.TaskStatusStarted
		info.Attempts += 1
		info.StartedAt = nowTimestamp()
		info.CompletedAt = nil
	})
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	return wrapper.updateStatus(task, func(info *tasks.ChunkTaskInfo) {
		info.Status = tasks.TaskStatusCanceled
		info.StartedAt = nowTimestamp()
		info.CompletedAt = nowTimestamp()
		info.Attempts += 1
		info.ErrorMessages = append(info.ErrorMessages, errorMessages...)
	})
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Documents.Update(task.ctx, task.chunkTask.DocID, func(docTask *tasks.DocumentTask) {
		docTask.FailedTasks = append(docTask.FailedTasks, tasks.RelexTaskName)
		docTask.FailedChunks[task.redisKey] = append(docTask.FailedChunks[task.redisKey], tasks.RelexTaskName)
	})
	if err != nil {
		return err
	}
	return wrapper.updateStatus(task, func(info *tasks.ChunkTaskInfo) {
		info.Status = tasks.TaskStatusCompletedFailure
		info.StartedAt = nowTimestamp()
		info.CompletedAt = nowTimestamp()
		info.Attempts += 1
		info.ErrorMessages = append(
			info.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				info.Attempts,
				maxRetries,
			),
		)
	})
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.updateStatus(task, func(info *tasks.ChunkTaskInfo) {
		info.Status = tasks.TaskStatusFailed
		info.CompletedAt = nowTimestamp()
		info.ErrorMessages = append(info.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.updateStatus(task, func(info *tasks.ChunkTaskInfo) {
		if !info.Status.Complete() {
			info.Status = tasks.TaskStatusCompletedSuccess
		}
		info.CompletedAt = nowTimestamp()
		info.ResultsFileKey = task.resultsKey()
	})
}

func (wrapper *redisClientWrapper) getChunkTask(task *Task) (*tasks.ChunkTask, error) {
	return wrapper.tasksClient.Chunks.Get(task.ctx, task.redisKey)
}

func (wrapper *redisClientWrapper) getJobTask(task *Task) (*tasks.JobTask, error) {
	return wrapper.tasksClient.Jobs.GetCached(task.ctx, task.chunkTask.JobID)
}

func (wrapper *redisClientWrapper) getDocTask(task *Task) (*tasks.DocumentTaskCached, error) {
	return wrapper.tasksClient.Documents.GetCached(task.ctx, task.chunkTask.DocID)
}
