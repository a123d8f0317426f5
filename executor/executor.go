package executor

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/shopsim/browser"
	"github.com/BaSui01/shopsim/planner"
)

// maxFallbackRounds 同一原始任务允许的降级轮数上限。
const maxFallbackRounds = 2

// Browser 是执行器对浏览器外观的最小依赖面，便于用替身测试。
// *browser.PersonaBrowser 是生产实现。
type Browser interface {
	Navigate(url string) browser.NavigationResult
	Search(query string) browser.ActionResult
	AddToCart(productSelector string) browser.ActionResult
	ProceedToCheckout() browser.ActionResult
	Click(selector string) bool
	FindElement(selector string, timeout time.Duration) bool
	FillForm(selector, value string) bool
	Scroll(distance browser.ScrollDistance, direction browser.ScrollDirection) bool
	ScrollIntoView(selector string) bool
	Count(selector string) int
	ClickNth(selector string, n int) bool
	TextContent(selector string) (string, bool)
	CaptureScreenshot(name string) string
	Pause(min, max time.Duration)
	Selectors() browser.SelectorConfig
	FrustrationCount() int
	Events() []browser.Event
	NavigationHistory() []browser.NavigationRecord
	AccessibilityIssues() []string
	WebsiteType() string
}

// Executor 按顺序执行计划任务：失败任务触发降级链，关键任务失败且
// 无降级可用时中止整个作业。
type Executor struct {
	browser   Browser
	plan      *planner.ExecutionPlan
	decisions map[string]planner.ExecutionDecision
	results   *JobExecutionResults
	logger    *zap.Logger
	rng       *rand.Rand

	// 每个原始任务 id 的降级轮数。
	fallbackAttempts map[string]int

	// 遥测汇入与评分只做一次，panic 恢复路径可能再次触达。
	finalized bool
}

// NewExecutor 创建执行器。rng 为 nil 时使用时间种子。
func NewExecutor(b Browser, plan *planner.ExecutionPlan, rng *rand.Rand, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	decisions := make(map[string]planner.ExecutionDecision, len(plan.Decisions))
	for _, decision := range plan.Decisions {
		decisions[decision.DecisionID] = decision
	}

	return &Executor{
		browser:   b,
		plan:      plan,
		decisions: decisions,
		results: &JobExecutionResults{
			JobID:     plan.JobID,
			JobName:   plan.JobName,
			Persona:   plan.Persona,
			StartTime: time.Now(),
		},
		logger:           logger.With(zap.String("component", "executor"), zap.String("job_id", plan.JobID)),
		rng:              rng,
		fallbackAttempts: make(map[string]int),
	}
}

// Execute 对目标站点执行整个计划并返回完整结果。
// 首次导航失败直接终止；其后每个任务失败先走降级链，降级仍失败且
// 任务属于阻断集时中止剩余任务。结果总是包含已产生的遥测与评分，
// 任何意外 panic 被折算为计划级问题后照常返回（可能不完整的）结果。
func (e *Executor) Execute(websiteURL string) (results *JobExecutionResults) {
	e.results.WebsiteURL = websiteURL
	defer func() {
		e.results.EndTime = time.Now()
	}()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("execution aborted by unexpected error", zap.Any("panic", r))
			e.results.AddIssue(fmt.Sprintf("Unexpected error during execution: %v", r))
			e.finalize()
			results = e.results
		}
	}()

	navResult := e.browser.Navigate(websiteURL)
	if !navResult.Success {
		e.results.AddIssue(fmt.Sprintf("Failed to load website: %s", navResult.Error))
		e.finalize()
		return e.results
	}

	for _, task := range e.plan.Tasks {
		result := e.executeTask(task)
		e.results.AddTaskResult(result)

		if !result.Success && len(task.FallbackTasks) > 0 {
			if !e.executeFallbacks(task) && result.IsBlockingFailure() {
				e.results.AddIssue(fmt.Sprintf("Blocking failure in task %s: %s", task.ID, result.ErrorMessage))
				break
			}
		} else if result.IsBlockingFailure() {
			e.results.AddIssue(fmt.Sprintf("Blocking failure in task %s: %s", task.ID, result.ErrorMessage))
			break
		}
	}

	e.finalize()
	return e.results
}

// finalize 汇入浏览器遥测并计算评分。
func (e *Executor) finalize() {
	if e.finalized {
		return
	}
	e.finalized = true

	e.results.BehavioralData = &BehavioralData{
		FrustrationIndicators: e.browser.FrustrationCount(),
		Events:                e.browser.Events(),
		NavigationHistory:     e.browser.NavigationHistory(),
	}
	for _, issue := range e.browser.AccessibilityIssues() {
		e.results.AddAccessibilityIssue(issue)
	}
	e.results.WebsiteType = e.browser.WebsiteType()
	e.results.CalculateScores()

	e.logger.Info("job finished",
		zap.Bool("success", e.results.Success),
		zap.Float64("overall_score", e.results.OverallScore),
		zap.Int("tasks", len(e.results.TaskResults)))
}

// executeFallbacks 依次尝试失败任务的降级链，任一成功即返回 true。
// 同一原始任务最多触发 maxFallbackRounds 轮降级。
func (e *Executor) executeFallbacks(failed planner.ExecutionTask) bool {
	e.fallbackAttempts[failed.ID]++
	if e.fallbackAttempts[failed.ID] > maxFallbackRounds {
		e.results.AddIssue(fmt.Sprintf("Maximum fallback attempts reached for task %s", failed.ID))
		return false
	}

	for _, fallbackID := range failed.FallbackTasks {
		fallback := failed.Clone()
		fallback.ID = fallbackID

		e.logger.Debug("trying fallback task",
			zap.String("failed_task", failed.ID),
			zap.String("fallback_task", fallbackID))

		result := e.executeTask(fallback)
		e.results.AddTaskResult(result)
		if result.Success {
			return true
		}
	}
	return false
}

// executeTask 执行单个任务。处理器 panic 被折算为失败结果，
// 不会终止整个作业。
func (e *Executor) executeTask(task planner.ExecutionTask) (result TaskResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("task handler panicked",
				zap.String("task_id", task.ID), zap.Any("panic", r))
			result = TaskResult{
				TaskID:       task.ID,
				Success:      false,
				Duration:     time.Since(start),
				ErrorMessage: fmt.Sprintf("unexpected error: %v", r),
			}
		}
	}()

	task = e.applyDecisions(task)
	return e.dispatch(task, start)
}

// applyDecisions 在执行前把已解析的决策写入任务参数副本。
func (e *Executor) applyDecisions(task planner.ExecutionTask) planner.ExecutionTask {
	bindings := []struct {
		taskID     string
		decisionID string
		param      string
	}{
		{"explore_categories", "category_selection", "selection_method"},
		{"examine_product_details", "product_interest", "selection_criteria"},
		{"search_for_product", "search_method", "method"},
		{"select_product", "product_selection", "selection_criteria"},
		{"select_payment_method", "payment_selection", "selected_method"},
		{"check_shipping_cost", "shipping_option", "preferred_option"},
	}

	for _, binding := range bindings {
		if task.ID != binding.taskID {
			continue
		}
		decision, ok := e.decisions[binding.decisionID]
		if !ok {
			continue
		}
		task = task.Clone()
		if task.Parameters == nil {
			task.Parameters = make(map[string]any)
		}
		task.Parameters[binding.param] = decision.SelectedOption
		break
	}
	return task
}
