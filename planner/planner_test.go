// 任务规划器测试：确定性、必选任务覆盖与决策规则。
package planner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/shopsim/catalog"
	"github.com/BaSui01/shopsim/persona"
)

func testJob(t *testing.T, id string) catalog.JobDefinition {
	t.Helper()
	registry, err := catalog.NewRegistry(zap.NewNop())
	require.NoError(t, err)
	job, err := registry.Get(id)
	require.NoError(t, err)
	return job
}

func profileWith(tech, patience int, extra map[string]any) persona.Profile {
	p := persona.Profile{
		"technical":           map[string]any{"proficiency": tech},
		"e_commerce_specific": map[string]any{"patience_level": patience},
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

func TestPlanner_SameSeedSamePlan(t *testing.T) {
	job := testJob(t, "product_discovery")
	profile := profileWith(6, 6, nil)

	planA := NewPlanner(rand.New(rand.NewSource(42)), zap.NewNop()).Plan(profile, job)
	planB := NewPlanner(rand.New(rand.NewSource(42)), zap.NewNop()).Plan(profile, job)

	assert.Equal(t, planA.TaskIDs(), planB.TaskIDs())
	assert.Equal(t, planA.Decisions, planB.Decisions)
}

func TestPlanner_RequiredTasksAlwaysPlanned(t *testing.T) {
	job := testJob(t, "purchase_completion")
	profile := profileWith(1, 1, nil) // 最低耐心也不能丢必选任务

	for seed := int64(0); seed < 20; seed++ {
		plan := NewPlanner(rand.New(rand.NewSource(seed)), zap.NewNop()).Plan(profile, job)
		ids := plan.TaskIDs()
		for _, required := range job.RequiredTaskIDs() {
			assert.Containsf(t, ids, required, "seed %d dropped required task %s", seed, required)
		}
	}
}

func TestPlanner_RequiredTasksKeepCatalogOrder(t *testing.T) {
	job := testJob(t, "purchase_completion")
	plan := NewPlanner(rand.New(rand.NewSource(7)), zap.NewNop()).Plan(profileWith(5, 5, nil), job)

	required := job.RequiredTaskIDs()
	var planned []string
	seen := make(map[string]bool)
	for _, r := range required {
		seen[r] = true
	}
	for _, id := range plan.TaskIDs() {
		if seen[id] {
			planned = append(planned, id)
		}
	}
	assert.Equal(t, required, planned)
}

func TestPlanner_CategoryClampForTechProficiency(t *testing.T) {
	job := testJob(t, "product_discovery")

	highTech := NewPlanner(rand.New(rand.NewSource(1)), zap.NewNop()).
		Plan(profileWith(9, 5, nil), job)
	lowTech := NewPlanner(rand.New(rand.NewSource(1)), zap.NewNop()).
		Plan(profileWith(1, 5, nil), job)

	findTask := func(plan *ExecutionPlan, id string) (ExecutionTask, bool) {
		for _, task := range plan.Tasks {
			if task.ID == id {
				return task, true
			}
		}
		return ExecutionTask{}, false
	}

	task, ok := findTask(highTech, "explore_categories")
	require.True(t, ok)
	assert.Equal(t, 3, task.Parameters["min_categories"])

	task, ok = findTask(lowTech, "explore_categories")
	require.True(t, ok)
	assert.Equal(t, 4, task.Parameters["max_categories"])
}

func TestPlanner_SearchTermFromPreferredCategories(t *testing.T) {
	job := testJob(t, "price_check")
	profile := profileWith(5, 5, map[string]any{
		"shopping_behavior": map[string]any{
			"product_categories": []any{"Electronics"},
		},
	})

	plan := NewPlanner(rand.New(rand.NewSource(3)), zap.NewNop()).Plan(profile, job)

	for _, task := range plan.Tasks {
		if task.ID != "search_for_product" {
			continue
		}
		term, _ := task.Parameters["search_term"].(string)
		assert.Contains(t, []string{"smartphone", "laptop", "headphones", "camera"}, term)
		return
	}
	t.Fatal("search_for_product not planned")
}

func TestPlanner_DecisionRules(t *testing.T) {
	tests := []struct {
		name       string
		jobID      string
		decisionID string
		profile    persona.Profile
		want       string
	}{
		{
			name:       "budget persona picks lowest price",
			jobID:      "purchase_completion",
			decisionID: "product_selection",
			profile: profileWith(5, 5, map[string]any{
				"shopping_behavior": map[string]any{"price_sensitivity": "Budget"},
			}),
			want: "lowest_price",
		},
		{
			name:       "review driven persona picks best rated",
			jobID:      "purchase_completion",
			decisionID: "product_selection",
			profile: profileWith(5, 5, map[string]any{
				"e_commerce_specific": map[string]any{
					"patience_level":        5,
					"importance_of_reviews": 9,
				},
			}),
			want: "best_rated",
		},
		{
			name:       "tech savvy persona prefers search bar",
			jobID:      "price_check",
			decisionID: "search_method",
			profile:    profileWith(9, 5, nil),
			want:       "search_bar",
		},
		{
			name:       "novice prefers category navigation",
			jobID:      "price_check",
			decisionID: "search_method",
			profile:    profileWith(1, 5, nil),
			want:       "category_navigation",
		},
		{
			name:       "patient researcher goes deep",
			jobID:      "research_comparison",
			decisionID: "research_depth",
			profile:    profileWith(5, 9, nil),
			want:       "detailed_research",
		},
		{
			name:       "preferred categories win category selection",
			jobID:      "product_discovery",
			decisionID: "category_selection",
			profile: profileWith(5, 5, map[string]any{
				"shopping_behavior": map[string]any{
					"product_categories": []any{"Books"},
				},
			}),
			want: "preferred_categories",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := testJob(t, tt.jobID)
			plan := NewPlanner(rand.New(rand.NewSource(11)), zap.NewNop()).Plan(tt.profile, job)

			decision, ok := plan.Decision(tt.decisionID)
			require.True(t, ok, "decision %s not resolved", tt.decisionID)
			assert.Equal(t, tt.want, decision.SelectedOption)
			assert.NotEmpty(t, decision.Rationale)
		})
	}
}

func TestPlanner_PaymentSelectionNormalization(t *testing.T) {
	job := testJob(t, "purchase_completion")
	profile := profileWith(5, 5, map[string]any{
		"technical": map[string]any{
			"proficiency":     5,
			"payment_methods": []any{"Credit Card"},
		},
	})

	plan := NewPlanner(rand.New(rand.NewSource(2)), zap.NewNop()).Plan(profile, job)

	decision, ok := plan.Decision("payment_selection")
	require.True(t, ok)
	assert.Equal(t, "credit_card", decision.SelectedOption)
}

// countInclusions 统计多个种子下某可选任务被纳入计划的次数。
func countInclusions(t *testing.T, jobID, taskID string, profile persona.Profile, seeds int) int {
	t.Helper()
	job := testJob(t, jobID)

	included := 0
	for seed := 0; seed < seeds; seed++ {
		plan := NewPlanner(rand.New(rand.NewSource(int64(seed))), zap.NewNop()).Plan(profile, job)
		for _, id := range plan.TaskIDs() {
			if id == taskID {
				included++
				break
			}
		}
	}
	return included
}

func TestPlanner_OptionalInclusionFollowsTraits(t *testing.T) {
	const seeds = 200

	t.Run("high tech includes filters far more often", func(t *testing.T) {
		// 概率 0.5+0.3 对 0.5-0.3，200 个种子下应远离重合
		highTech := countInclusions(t, "product_discovery", "filter_products", profileWith(9, 5, nil), seeds)
		lowTech := countInclusions(t, "product_discovery", "filter_products", profileWith(1, 5, nil), seeds)

		assert.GreaterOrEqual(t, highTech, 130, "high-tech persona should include filter_products ~80%% of plans")
		assert.LessOrEqual(t, lowTech, 70, "low-tech persona should include filter_products ~20%% of plans")
		assert.Greater(t, highTech, lowTech+30)
	})

	t.Run("high patience browses featured products more often", func(t *testing.T) {
		// 概率 0.5+0.2 对 0.5-0.2
		patient := countInclusions(t, "product_discovery", "browse_featured_products", profileWith(5, 9, nil), seeds)
		impatient := countInclusions(t, "product_discovery", "browse_featured_products", profileWith(5, 1, nil), seeds)

		assert.GreaterOrEqual(t, patient, 110)
		assert.LessOrEqual(t, impatient, 90)
		assert.Greater(t, patient, impatient+30)
	})

	t.Run("low patience suppresses all optional tasks", func(t *testing.T) {
		// 全局 -0.2：0.5 对 0.3
		neutral := countInclusions(t, "price_check", "filter_search_results", profileWith(5, 5, nil), seeds)
		impatient := countInclusions(t, "price_check", "filter_search_results", profileWith(5, 1, nil), seeds)

		assert.Greater(t, neutral, impatient)
	})

	t.Run("frequent shoppers check shipping more often", func(t *testing.T) {
		// 概率 0.5+0.2 对 0.5
		weekly := profileWith(5, 5, map[string]any{
			"shopping_behavior": map[string]any{"frequency": "Weekly"},
		})
		monthly := profileWith(5, 5, map[string]any{
			"shopping_behavior": map[string]any{"frequency": "Monthly"},
		})

		weeklyCount := countInclusions(t, "price_check", "check_shipping_cost", weekly, seeds)
		monthlyCount := countInclusions(t, "price_check", "check_shipping_cost", monthly, seeds)

		assert.Greater(t, weeklyCount, monthlyCount)
	})
}

func TestPlanner_PlanDoesNotAliasProfile(t *testing.T) {
	job := testJob(t, "product_discovery")
	profile := profileWith(5, 5, nil)

	plan := NewPlanner(rand.New(rand.NewSource(5)), zap.NewNop()).Plan(profile, job)

	plan.Persona["technical"].(map[string]any)["proficiency"] = 1
	assert.Equal(t, 5, profile.Int("technical.proficiency", 0))
}
