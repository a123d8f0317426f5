package catalog

import (
	"fmt"

	"go.uber.org/zap"
)

// PersonaWildcard marks a job as applicable to every persona type.
const PersonaWildcard = "all"

// Registry 是启动时填充的只读 Job 目录。注册后不提供任何修改入口。
type Registry struct {
	jobs   map[string]JobDefinition
	order  []string
	shared map[string]TaskDefinition
	logger *zap.Logger
}

// NewRegistry 构建并校验内置 Job 目录。
// 校验规则：Job 内 task id 唯一；每个 fallback 引用必须能在该 Job 自身的
// 任务列表或共享任务集中解析。
func NewRegistry(logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		jobs:   make(map[string]JobDefinition),
		shared: sharedTasks(),
		logger: logger.With(zap.String("component", "job_catalog")),
	}

	for _, job := range builtinJobs() {
		if err := r.register(job); err != nil {
			return nil, err
		}
	}

	r.logger.Info("job catalog loaded", zap.Int("jobs", len(r.jobs)))
	return r, nil
}

func (r *Registry) register(job JobDefinition) error {
	if err := r.validate(job); err != nil {
		return fmt.Errorf("job %q: %w", job.ID, err)
	}
	r.jobs[job.ID] = job
	r.order = append(r.order, job.ID)
	return nil
}

func (r *Registry) validate(job JobDefinition) error {
	seen := make(map[string]struct{}, len(job.Tasks))
	for _, task := range job.Tasks {
		if _, dup := seen[task.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTaskID, task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	for _, task := range job.Tasks {
		for _, fallbackID := range task.FallbackTasks {
			if _, ok := seen[fallbackID]; ok {
				continue
			}
			if _, ok := r.shared[fallbackID]; ok {
				continue
			}
			return fmt.Errorf("%w: task %s references %s", ErrUnresolvedFallback, task.ID, fallbackID)
		}
	}
	return nil
}

// Get 按 id 查找 Job 定义。
func (r *Registry) Get(jobID string) (JobDefinition, error) {
	job, ok := r.jobs[jobID]
	if !ok {
		return JobDefinition{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return job, nil
}

// All 按注册顺序返回全部 Job。
func (r *Registry) All() []JobDefinition {
	out := make([]JobDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.jobs[id])
	}
	return out
}

// JobsForPersona 返回适用于指定 persona 类型的 Job（含通配 "all"）。
func (r *Registry) JobsForPersona(personaType string) []JobDefinition {
	var out []JobDefinition
	for _, id := range r.order {
		job := r.jobs[id]
		for _, tag := range job.ApplicablePersonas {
			if tag == PersonaWildcard || tag == personaType {
				out = append(out, job)
				break
			}
		}
	}
	return out
}

// SharedTask resolves a task id from the shared fallback set.
func (r *Registry) SharedTask(id string) (TaskDefinition, bool) {
	task, ok := r.shared[id]
	return task, ok
}
