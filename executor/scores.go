package executor

import "time"

var navigationTaskIDs = map[string]bool{
	"navigate_to_homepage": true,
	"explore_categories":   true,
	"proceed_to_checkout":  true,
	"find_account_section": true,
}

var findabilityTaskIDs = map[string]bool{
	"search_for_product":          true,
	"search_for_product_category": true,
	"filter_products":             true,
	"filter_search_results":       true,
}

// defaultScore 某一维度没有任何可评估信号时的中性分。
const defaultScore = 5.0

// CalculateScores 由任务结果推导成功判定与各维度得分。
//
// 成功判定：关键任务全部成功且任务成功率 ≥ 60%。总分为导航 0.4、
// 设计 0.3、可寻性 0.3 的加权和。没有任务结果时所有维度回退中性分。
func (r *JobExecutionResults) CalculateScores() {
	if len(r.TaskResults) == 0 {
		r.Success = false
		r.NavigationScore = defaultScore
		r.DesignScore = defaultScore
		r.FindabilityScore = defaultScore
		r.OverallScore = defaultScore
		return
	}

	criticalSuccess := true
	for _, criticalID := range criticalTaskIDs {
		found := false
		for _, task := range r.TaskResults {
			if task.TaskID == criticalID && task.Success {
				found = true
				break
			}
		}
		if !found {
			criticalSuccess = false
			break
		}
	}

	successRate := float64(len(r.SuccessfulTasks())) / float64(len(r.TaskResults))
	r.Success = criticalSuccess && successRate >= 0.6

	r.NavigationScore = r.navigationScore()
	r.DesignScore = r.designScore()
	r.FindabilityScore = r.findabilityScore()
	r.OverallScore = r.NavigationScore*0.4 + r.DesignScore*0.3 + r.FindabilityScore*0.3
}

func (r *JobExecutionResults) resultsMatching(ids map[string]bool) []TaskResult {
	var out []TaskResult
	for _, task := range r.TaskResults {
		if ids[task.TaskID] {
			out = append(out, task)
		}
	}
	return out
}

// navigationScore 导航维度：成功率占 70%，加载速度占 30%。
// 加载时间按 5 秒线性衰减到 0。
func (r *JobExecutionResults) navigationScore() float64 {
	navResults := r.resultsMatching(navigationTaskIDs)
	if len(navResults) == 0 {
		return defaultScore
	}

	succeeded := 0
	var loadTotal time.Duration
	loadSamples := 0
	for _, task := range navResults {
		if task.Success {
			succeeded++
		}
		if v, ok := task.Metrics["load_time"]; ok {
			if d, ok := v.(time.Duration); ok {
				loadTotal += d
				loadSamples++
			}
		}
	}

	successRate := float64(succeeded) / float64(len(navResults))
	avgLoad := 0.0
	if loadSamples > 0 {
		avgLoad = (loadTotal / time.Duration(loadSamples)).Seconds()
	}
	loadFactor := clamp01(1 - avgLoad/5)

	return clampScore((successRate*0.7 + loadFactor*0.3) * 10)
}

// designScore 设计维度：从满分扣减问题与可达性问题（上限 5 分），
// 再扣减挫败感（上限 2 分）。没有任何信号时回退中性分。
func (r *JobExecutionResults) designScore() float64 {
	if len(r.Issues) == 0 && len(r.AccessibilityIssues) == 0 && r.BehavioralData == nil {
		return defaultScore
	}

	penalty := float64(len(r.Issues))*0.5 + float64(len(r.AccessibilityIssues))*0.7
	if penalty > 5 {
		penalty = 5
	}
	score := 10 - penalty

	if r.BehavioralData != nil {
		frustration := float64(r.BehavioralData.FrustrationIndicators) * 0.2
		if frustration > 2 {
			frustration = 2
		}
		score -= frustration
	}
	return clampScore(score)
}

// findabilityScore 可寻性维度：成功率占 80%，检索耗时占 20%。
// 检索时间按 10 秒线性衰减到 0。
func (r *JobExecutionResults) findabilityScore() float64 {
	findResults := r.resultsMatching(findabilityTaskIDs)
	if len(findResults) == 0 {
		return defaultScore
	}

	succeeded := 0
	var findTotal time.Duration
	findSamples := 0
	for _, task := range findResults {
		if task.Success {
			succeeded++
		}
		if v, ok := task.Metrics["time_to_find"]; ok {
			if d, ok := v.(time.Duration); ok {
				findTotal += d
				findSamples++
			}
		}
	}

	successRate := float64(succeeded) / float64(len(findResults))
	avgFind := 0.0
	if findSamples > 0 {
		avgFind = (findTotal / time.Duration(findSamples)).Seconds()
	}
	findFactor := clamp01(1 - avgFind/10)

	return clampScore((successRate*0.8 + findFactor*0.2) * 10)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
