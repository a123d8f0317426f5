package planner

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/shopsim/catalog"
	"github.com/BaSui01/shopsim/persona"
)

// Planner 根据 persona 特征生成执行计划。
//
// 必选任务部分完全确定；可选任务与未命中规则的决策使用注入的随机源，
// 测试可固定种子复现同一计划。
type Planner struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewPlanner 创建 Planner。rng 为 nil 时使用时间种子。
func NewPlanner(rng *rand.Rand, logger *zap.Logger) *Planner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		rng:    rng,
		logger: logger.With(zap.String("component", "task_planner")),
	}
}

// Plan 为 (persona, job) 生成一次性的执行计划。
func (p *Planner) Plan(profile persona.Profile, job catalog.JobDefinition) *ExecutionPlan {
	traits := persona.ExtractTraits(profile)
	frequency := profile.String("shopping_behavior.frequency", "Monthly")

	plan := &ExecutionPlan{
		JobID:             job.ID,
		JobName:           job.Name,
		Persona:           profile.Clone(),
		SuccessCriteria:   append([]string(nil), job.SuccessCriteria...),
		EstimatedDuration: job.EstimatedDuration,
	}

	// 必选任务始终入计划，保持目录顺序。
	for _, def := range job.Tasks {
		if !def.Required {
			continue
		}
		task := p.newExecutionTask(def)
		p.customizeParameters(&task, profile, traits)
		plan.Tasks = append(plan.Tasks, task)
	}

	// 可选任务按 persona 加权伯努利抽样决定是否纳入。
	for _, def := range job.Tasks {
		if def.Required {
			continue
		}
		if !p.includeOptionalTask(def, traits, frequency) {
			continue
		}
		task := p.newExecutionTask(def)
		p.customizeParameters(&task, profile, traits)
		plan.Tasks = append(plan.Tasks, task)
	}

	for _, dp := range job.DecisionPoints {
		option, rationale := p.resolveDecision(dp, profile)
		plan.Decisions = append(plan.Decisions, ExecutionDecision{
			DecisionID:     dp.ID,
			Name:           dp.Name,
			Description:    dp.Description,
			SelectedOption: option,
			Rationale:      rationale,
		})
	}

	p.logger.Debug("execution plan created",
		zap.String("job_id", job.ID),
		zap.Int("tasks", len(plan.Tasks)),
		zap.Int("decisions", len(plan.Decisions)))

	return plan
}

func (p *Planner) newExecutionTask(def catalog.TaskDefinition) ExecutionTask {
	task := ExecutionTask{
		ID:            def.ID,
		Name:          def.Name,
		Description:   def.Description,
		FallbackTasks: append([]string(nil), def.FallbackTasks...),
	}
	if def.Parameters != nil {
		task.Parameters = make(map[string]any, len(def.Parameters))
		for k, v := range def.Parameters {
			task.Parameters[k] = v
		}
	}
	return task
}

// includeOptionalTask 以 0.5 为基础概率，按特征叠加固定增量后抽样。
func (p *Planner) includeOptionalTask(def catalog.TaskDefinition, traits persona.Traits, frequency string) bool {
	probability := baseInclusionProbability
	for _, rule := range inclusionRules {
		if rule.applies(def.ID, traits, frequency) {
			probability += rule.delta
		}
	}
	return p.rng.Float64() < probability
}

// customizeParameters 按 persona 特征调整任务参数。
func (p *Planner) customizeParameters(task *ExecutionTask, profile persona.Profile, traits persona.Traits) {
	params := task.Parameters
	if params == nil {
		return
	}

	// 技术熟练者多浏览一档分类，生疏者少一档。
	if hasParams(params, "min_categories", "max_categories") {
		minC, maxC := paramInt(params, "min_categories", 2), paramInt(params, "max_categories", 5)
		switch {
		case traits.TechProficiency > 7:
			params["min_categories"] = minInt(minC+1, maxC)
		case traits.TechProficiency < 3:
			params["max_categories"] = maxInt(minC, maxC-1)
		}
	}

	// 耐心高者多看产品，耐心低者少看。
	if hasParams(params, "min_products", "max_products") {
		minP, maxP := paramInt(params, "min_products", 2), paramInt(params, "max_products", 4)
		switch {
		case traits.PatienceLevel > 7:
			params["min_products"] = minInt(minP+1, maxP)
			params["max_products"] = minInt(maxP+1, 10)
		case traits.PatienceLevel < 3:
			params["max_products"] = maxInt(minP, maxP-1)
		}
	}

	// 搜索任务从偏好品类挑一个具体关键词。
	if task.ID == "search_for_product" {
		if _, ok := params["search_term"]; ok {
			params["search_term"] = p.pickSearchTerm(profile)
		}
	}
	if task.ID == "search_for_product_category" {
		if _, ok := params["category"]; ok {
			params["category"] = p.pickCategory(profile)
		}
	}
}

func (p *Planner) pickCategory(profile persona.Profile) string {
	preferred := profile.Strings("shopping_behavior.product_categories")
	if len(preferred) == 0 {
		return genericSearchTerm
	}
	return preferred[p.rng.Intn(len(preferred))]
}

func (p *Planner) pickSearchTerm(profile persona.Profile) string {
	category := p.pickCategory(profile)
	terms, ok := categorySearchTerms[category]
	if !ok {
		return genericSearchTerm
	}
	return terms[p.rng.Intn(len(terms))]
}

// resolveDecision 按优先级应用 id 专属规则；无规则命中时均匀随机。
func (p *Planner) resolveDecision(dp catalog.DecisionPoint, profile persona.Profile) (string, string) {
	if len(dp.Options) == 0 {
		return "default", "No options available"
	}
	for _, rule := range decisionRules {
		if rule.decisionID != dp.ID {
			continue
		}
		if option, rationale, ok := rule.apply(profile, dp.Options); ok {
			return option, rationale
		}
	}
	option := dp.Options[p.rng.Intn(len(dp.Options))]
	return option, "Random selection based on available options"
}

func hasParams(params map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return false
		}
	}
	return true
}

func paramInt(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
