// Package executor drives a persona-customized execution plan against a live
// website through the persona browser facade, collects per-task results and
// behavioral telemetry, and derives the final UX scores.
package executor

import (
	"time"

	"github.com/BaSui01/shopsim/browser"
	"github.com/BaSui01/shopsim/persona"
)

// blockingTaskIDs 失败后继续执行已无意义的任务。
var blockingTaskIDs = map[string]bool{
	"navigate_to_homepage": true,
	"search_for_product":   true,
	"add_to_cart":          true,
	"proceed_to_checkout":  true,
}

// criticalTaskIDs 整单成功的先决任务。
var criticalTaskIDs = []string{
	"navigate_to_homepage",
	"search_for_product",
}

// TaskResult 单个任务的执行结果。
type TaskResult struct {
	TaskID       string         `json:"task_id"`
	Success      bool           `json:"success"`
	Duration     time.Duration  `json:"duration"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metrics      map[string]any `json:"metrics,omitempty"`
	Screenshots  []string       `json:"screenshots,omitempty"`
}

// IsBlockingFailure 报告该失败是否应终止整个作业。
func (r TaskResult) IsBlockingFailure() bool {
	return !r.Success && blockingTaskIDs[r.TaskID]
}

// BehavioralData 执行期间由浏览器外观采集的行为遥测。
type BehavioralData struct {
	FrustrationIndicators int                        `json:"frustration_indicators"`
	Events                []browser.Event            `json:"events,omitempty"`
	NavigationHistory     []browser.NavigationRecord `json:"navigation_history,omitempty"`
}

// JobExecutionResults 一次作业执行的完整结果与评分。
type JobExecutionResults struct {
	JobID       string          `json:"job_id"`
	JobName     string          `json:"job_name"`
	Persona     persona.Profile `json:"persona"`
	WebsiteURL  string          `json:"website_url"`
	WebsiteType string          `json:"website_type,omitempty"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`

	TaskResults []TaskResult `json:"task_results"`
	Success     bool         `json:"success"`

	OverallScore     float64 `json:"overall_score"`
	NavigationScore  float64 `json:"navigation_score"`
	DesignScore      float64 `json:"design_score"`
	FindabilityScore float64 `json:"findability_score"`

	Issues              []string        `json:"issues,omitempty"`
	AccessibilityIssues []string        `json:"accessibility_issues,omitempty"`
	BehavioralData      *BehavioralData `json:"behavioral_data,omitempty"`
	Screenshots         []string        `json:"screenshots,omitempty"`
}

// TotalDuration 作业总耗时。
func (r *JobExecutionResults) TotalDuration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// SuccessfulTasks 返回所有成功的任务结果。
func (r *JobExecutionResults) SuccessfulTasks() []TaskResult {
	var out []TaskResult
	for _, task := range r.TaskResults {
		if task.Success {
			out = append(out, task)
		}
	}
	return out
}

// FailedTasks 返回所有失败的任务结果。
func (r *JobExecutionResults) FailedTasks() []TaskResult {
	var out []TaskResult
	for _, task := range r.TaskResults {
		if !task.Success {
			out = append(out, task)
		}
	}
	return out
}

// AddTaskResult 追加任务结果并并入其截图。
func (r *JobExecutionResults) AddTaskResult(result TaskResult) {
	r.TaskResults = append(r.TaskResults, result)
	for _, shot := range result.Screenshots {
		if shot != "" {
			r.Screenshots = append(r.Screenshots, shot)
		}
	}
}

// AddIssue 记录一条执行问题。
func (r *JobExecutionResults) AddIssue(issue string) {
	r.Issues = append(r.Issues, issue)
}

// AddAccessibilityIssue 记录一条可达性问题。
func (r *JobExecutionResults) AddAccessibilityIssue(issue string) {
	r.AccessibilityIssues = append(r.AccessibilityIssues, issue)
}
