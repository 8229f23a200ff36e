package tasks

import (
	"fmt"

	"github.com/peter-xbs/FSM/redis"
)

type Client struct {
	Documents DocumentTasks
	Chunks    ChunkTasks
	Jobs      JobTasks
}

// NewClient is a preferred way for working with TaskInfos
func NewClient() (Client, error) {
	clients := make(map[redis.DB]*redis.Client, 3)
	for _, db := range []redis.DB{DocumentsDB, JobsDB, ChunksDB} {
		client, err := redis.NewClient(db)
		if err != nil {
			return Client{}, err
		}
		clients[db] = &client
	}
	return FromClients(clients[DocumentsDB], clients[JobsDB], clients[ChunksDB]), nil
}

func FromClients(documents, jobs, chunks *redis.Client) Client {
	return Client{
		Documents: DocumentTasks{client: documents},
		Jobs:      JobTasks{client: jobs},
		Chunks:    ChunkTasks{client: chunks},
	}
}

func (client *Client) Close() {
	_ = client.Chunks.client.Close()
	_ = client.Documents.client.Close()
	_ = client.Jobs.client.Close()
}

func cachedPropertiesKey(redisKey string) string {
	return fmt.Sprintf("%s-cached-properties", redisKey)
}
