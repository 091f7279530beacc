package queue

import (
	"fmt"

	"dagplanner-api/core/logger"

	"github.com/hibiken/asynq"
)

var client *asynq.Client

// RedisOpt builds the asynq connection options from redis settings
func RedisOpt(host string, port int, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}

// InitClient creates the shared task queue client
func InitClient(opt asynq.RedisClientOpt) *asynq.Client {
	client = asynq.NewClient(opt)
	logger.Info("Task queue client initialized", "addr", opt.Addr)
	return client
}

// Client returns the shared task queue client
func Client() *asynq.Client {
	return client
}

// Enqueue submits a task to the queue
func Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if client == nil {
		return nil, fmt.Errorf("queue client not initialized")
	}
	return client.Enqueue(task, opts...)
}
