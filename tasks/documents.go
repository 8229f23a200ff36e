package tasks

import (
	"context"

	"github.com/peter-xbs/FSM/redis"
	"github.com/peter-xbs/FSM/utils/maps"
	"golang.org/x/sync/errgroup"
)

const DocumentsDB redis.DB = 0

type DocumentTask struct {
	maps.BaseDocument `json:"-"`
	FailedTasks       []string            `json:"failed_tasks"`
	FailedChunks      map[string][]string `json:"failed_chunks"`
}

type DocumentTaskCached struct {
	maps.BaseDocument `json:"-"`
	DocInfo           map[string]interface{} `json:"document_info"`
	FailedTasks       []string               `json:"failed_tasks"`
	JobID             string                 `json:"job_id"`
	WorkType          string                 `json:"work_type"`
}

type DocumentTasks struct {
	client *redis.Client
}

func (tasks DocumentTasks) Get(ctx context.Context, redisKey string) (*DocumentTask, error) {
	var task DocumentTask
	if err := tasks.client.GetPartialDocument(ctx, redisKey, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks DocumentTasks) GetCached(ctx context.Context, redisKey string) (*DocumentTaskCached, error) {
	var task DocumentTaskCached
	if err := tasks.client.GetPartialDocument(ctx, cachedPropertiesKey(redisKey), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update changes the document and refreshes its cached properties copy under
// the same lock.
func (tasks DocumentTasks) Update(ctx context.Context, redisKey string, updateFunc func(task *DocumentTask)) (err error) {
	releaseLock, err := tasks.client.Lock(ctx, redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()

	var task DocumentTask
	var cached DocumentTaskCached
	if err = tasks.client.GetPartialDocument(ctx, redisKey, &task); err != nil {
		return err
	}
	if task.FailedChunks == nil {
		task.FailedChunks = map[string][]string{}
	}
	if err = maps.ApplyUpdates(&task, updateFunc); err != nil {
		return err
	}
	if err = maps.CopyValues(&task, &cached); err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return tasks.client.SaveDoc(groupCtx, redisKey, &task)
	})
	group.Go(func() error {
		return tasks.client.SaveDoc(groupCtx, cachedPropertiesKey(redisKey), &cached)
	})
	return group.Wait()
}
