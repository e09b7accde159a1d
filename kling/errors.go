package kling

import (
	"fmt"
	"time"
)

// ConfigError means the client cannot be used at all (missing credentials).
// It is fatal and raised before any job is dispatched.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "kling config error: " + e.Message
}

// RequestError is a non-success HTTP status or a provider error code on a
// create/query/download call. Recorded per-job, never fatal to a batch.
type RequestError struct {
	Action     string // "create task", "query task", "download video"
	HTTPStatus int
	Code       int // provider error code, 0 when transport-level
	Message    string
}

func (e *RequestError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("kling: failed to %s: code %d: %s", e.Action, e.Code, e.Message)
	}
	return fmt.Sprintf("kling: failed to %s: HTTP %d: %s", e.Action, e.HTTPStatus, e.Message)
}

// TaskError means the provider reports a submitted task as failed.
type TaskError struct {
	TaskID  string
	Message string
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("kling: task %s failed: %s", e.TaskID, e.Message)
}

// TimeoutError means polling exceeded the wall-clock budget without the task
// reaching a terminal state.
type TimeoutError struct {
	TaskID  string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("kling: task %s timed out after %s", e.TaskID, e.Elapsed.Round(time.Second))
}
