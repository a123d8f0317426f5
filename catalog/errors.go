package catalog

import "errors"

var (
	// ErrJobNotFound 任务目录中不存在该 Job
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateTaskID 同一 Job 内 task id 重复
	ErrDuplicateTaskID = errors.New("duplicate task id in job")

	// ErrUnresolvedFallback fallback 引用的 task id 无法解析
	ErrUnresolvedFallback = errors.New("fallback task id does not resolve")
)
