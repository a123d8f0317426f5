// Package catalog holds the static registry of shopper jobs: ordered task
// lists, decision points, and success criteria for each "job to be done".
package catalog

// TaskDefinition is one atomic step of a job. Immutable once registered.
type TaskDefinition struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Required    bool           `json:"required"`
	// FallbackTasks lists task ids tried in order when this task fails.
	FallbackTasks []string       `json:"fallback_tasks,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// DecisionPoint is a job-level choice resolved once per plan.
type DecisionPoint struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
	// PersonaFactors are dot paths into the profile that influence the choice.
	PersonaFactors []string `json:"persona_factors"`
}

// DurationRange estimates how long a job takes, in seconds.
type DurationRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// JobDefinition is a complete job to be done. Immutable once registered.
type JobDefinition struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Tasks              []TaskDefinition `json:"tasks"`
	DecisionPoints     []DecisionPoint  `json:"decision_points,omitempty"`
	SuccessCriteria    []string         `json:"success_criteria,omitempty"`
	ApplicablePersonas []string         `json:"applicable_personas,omitempty"`
	EstimatedDuration  DurationRange    `json:"estimated_duration"`
}

// Task returns the task definition with the given id, if the job has it.
func (j JobDefinition) Task(id string) (TaskDefinition, bool) {
	for _, t := range j.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return TaskDefinition{}, false
}

// RequiredTaskIDs returns the ids of all required tasks in plan order.
func (j JobDefinition) RequiredTaskIDs() []string {
	var ids []string
	for _, t := range j.Tasks {
		if t.Required {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
