package jobcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	keyJobID        contextKey = "job_id"
	keyJobName      contextKey = "job_name"
	keyJobStartTime contextKey = "job_start_time"
)

// jobTimeout bounds a single batch run. Nothing in a batch job may block
// forever; the provider, the transcriber and the database all answer
// well inside this window.
const jobTimeout = 5 * time.Minute

// JobBegin derives a bounded context carrying the batch job's identity,
// for log correlation across the handler and the services it drives.
func JobBegin(parent context.Context, jobName string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	ctx = context.WithValue(ctx, keyJobID, uuid.New())
	ctx = context.WithValue(ctx, keyJobName, jobName)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())
	return ctx, cancel
}

// JobID extracts the job id from context.
func JobID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyJobID).(uuid.UUID)
	return id, ok
}

// JobName extracts the job name from context.
func JobName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(keyJobName).(string)
	return name, ok
}

// JobStartTime extracts the job start time from context.
func JobStartTime(ctx context.Context) (time.Time, bool) {
	start, ok := ctx.Value(keyJobStartTime).(time.Time)
	return start, ok
}

// IsRetryableError reports whether a batch-item failure is worth another
// attempt on a later run, as opposed to a permanent data problem.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "context canceled") {
		return true
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") {
		return true
	}

	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") ||
		strings.Contains(errStr, "40p01") {
		return true
	}

	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	if strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	return false
}
