// 评分模型性质测试：任意任务结果组合下分数都应落在约定区间。
package executor

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestCalculateScores_Properties(t *testing.T) {
	taskIDs := []string{
		"navigate_to_homepage", "search_for_product", "explore_categories",
		"filter_products", "filter_search_results", "check_product_price",
		"check_shipping_cost", "read_reviews", "proceed_to_checkout",
		"find_account_section", "add_to_cart",
	}

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(rt, "tasks")
		results := &JobExecutionResults{}
		for i := 0; i < n; i++ {
			task := TaskResult{
				TaskID:  rapid.SampledFrom(taskIDs).Draw(rt, "task_id"),
				Success: rapid.Bool().Draw(rt, "success"),
			}
			if rapid.Bool().Draw(rt, "has_load_time") {
				task.Metrics = map[string]any{
					"load_time":    time.Duration(rapid.Int64Range(0, int64(30*time.Second)).Draw(rt, "load_time")),
					"time_to_find": time.Duration(rapid.Int64Range(0, int64(30*time.Second)).Draw(rt, "find_time")),
				}
			}
			results.AddTaskResult(task)
		}
		for i := rapid.IntRange(0, 10).Draw(rt, "issues"); i > 0; i-- {
			results.AddIssue("issue")
		}
		for i := rapid.IntRange(0, 10).Draw(rt, "a11y"); i > 0; i-- {
			results.AddAccessibilityIssue("a11y issue")
		}
		if rapid.Bool().Draw(rt, "behavioral") {
			results.BehavioralData = &BehavioralData{
				FrustrationIndicators: rapid.IntRange(0, 100).Draw(rt, "frustration"),
			}
		}

		results.CalculateScores()

		for name, score := range map[string]float64{
			"navigation":  results.NavigationScore,
			"design":      results.DesignScore,
			"findability": results.FindabilityScore,
			"overall":     results.OverallScore,
		} {
			if score < 0 || score > 10 {
				rt.Fatalf("%s score %f out of range", name, score)
			}
		}

		// 总分是固定权重的加权和
		want := results.NavigationScore*0.4 + results.DesignScore*0.3 + results.FindabilityScore*0.3
		if n > 0 && abs(results.OverallScore-want) > 1e-9 {
			rt.Fatalf("overall %f != weighted %f", results.OverallScore, want)
		}

		// 成功判定蕴含关键任务成功
		if results.Success {
			for _, criticalID := range criticalTaskIDs {
				found := false
				for _, task := range results.TaskResults {
					if task.TaskID == criticalID && task.Success {
						found = true
						break
					}
				}
				if !found {
					rt.Fatalf("success reported without successful critical task %s", criticalID)
				}
			}
		}
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
