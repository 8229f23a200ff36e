package worker

import (
	"path"
	"time"
)

// resultsKey places the relation results next to the chunk they were
// extracted from.
func (task *Task) resultsKey() string {
	return path.Join("processed", "documents", task.chunkTask.DocID, "chunks", task.redisKey, task.redisKey+".relex_results.json")
}

// timestampLayout is RFC 3339 with microseconds, as the sequencer expects.
const timestampLayout = "2006-01-02T15:04:05.000000-07:00"

func nowTimestamp() *string {
	now := time.Now().UTC().Format(timestampLayout)
	return &now
}
