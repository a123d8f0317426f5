// Package planner turns a persona profile and a job definition into a
// concrete, persona-customized execution plan.
package planner

import (
	"github.com/BaSui01/shopsim/catalog"
	"github.com/BaSui01/shopsim/persona"
)

// ExecutionTask 是按 persona 定制后的任务副本，归属于单个 ExecutionPlan。
type ExecutionTask struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Parameters    map[string]any `json:"parameters,omitempty"`
	FallbackTasks []string       `json:"fallback_tasks,omitempty"`
}

// Clone 返回深拷贝。执行器在替换 fallback id 或应用决策前必须先拷贝，
// 计划本身创建后不再被修改。
func (t ExecutionTask) Clone() ExecutionTask {
	out := t
	if t.Parameters != nil {
		out.Parameters = make(map[string]any, len(t.Parameters))
		for k, v := range t.Parameters {
			out.Parameters[k] = v
		}
	}
	out.FallbackTasks = append([]string(nil), t.FallbackTasks...)
	return out
}

// ExecutionDecision 是已解析的决策点：选定的选项及其理由。
type ExecutionDecision struct {
	DecisionID     string `json:"decision_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	SelectedOption string `json:"selected_option"`
	Rationale      string `json:"rationale,omitempty"`
}

// ExecutionPlan 是 (persona, job) 的一次性产物：有序任务、已解析决策、
// 成功标准与时长估计。由 Planner 创建一次，由执行器消费一次。
type ExecutionPlan struct {
	JobID             string                `json:"job_id"`
	JobName           string                `json:"job_name"`
	Persona           persona.Profile       `json:"persona"`
	Tasks             []ExecutionTask       `json:"tasks"`
	Decisions         []ExecutionDecision   `json:"decisions,omitempty"`
	SuccessCriteria   []string              `json:"success_criteria,omitempty"`
	EstimatedDuration catalog.DurationRange `json:"estimated_duration"`
}

// Decision returns the resolved decision with the given id, if present.
func (p *ExecutionPlan) Decision(id string) (ExecutionDecision, bool) {
	for _, d := range p.Decisions {
		if d.DecisionID == id {
			return d, true
		}
	}
	return ExecutionDecision{}, false
}

// TaskIDs returns the planned task ids in execution order.
func (p *ExecutionPlan) TaskIDs() []string {
	ids := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		ids[i] = t.ID
	}
	return ids
}
