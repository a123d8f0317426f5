// 作业目录注册与校验测试。
package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRegistry(t *testing.T) {
	registry, err := NewRegistry(zap.NewNop())
	require.NoError(t, err)

	jobs := registry.All()
	require.Len(t, jobs, 5)

	// 目录顺序稳定
	ids := make([]string, len(jobs))
	for i, job := range jobs {
		ids[i] = job.ID
	}
	assert.Equal(t, []string{
		"product_discovery",
		"price_check",
		"purchase_completion",
		"research_comparison",
		"account_management",
	}, ids)
}

func TestRegistry_Get(t *testing.T) {
	registry, err := NewRegistry(zap.NewNop())
	require.NoError(t, err)

	job, err := registry.Get("price_check")
	require.NoError(t, err)
	assert.Equal(t, "Price Check", job.Name)

	_, err = registry.Get("nonexistent")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRegistry_TaskIDsUniquePerJob(t *testing.T) {
	registry, err := NewRegistry(zap.NewNop())
	require.NoError(t, err)

	for _, job := range registry.All() {
		seen := make(map[string]bool)
		for _, task := range job.Tasks {
			assert.Falsef(t, seen[task.ID], "job %s has duplicate task id %s", job.ID, task.ID)
			seen[task.ID] = true
		}
	}
}

func TestRegistry_FallbacksResolve(t *testing.T) {
	registry, err := NewRegistry(zap.NewNop())
	require.NoError(t, err)

	for _, job := range registry.All() {
		for _, task := range job.Tasks {
			for _, fallbackID := range task.FallbackTasks {
				_, inJob := job.Task(fallbackID)
				_, shared := registry.SharedTask(fallbackID)
				assert.Truef(t, inJob || shared,
					"job %s task %s: unresolved fallback %s", job.ID, task.ID, fallbackID)
			}
		}
	}
}

func TestRegistry_JobsForPersona(t *testing.T) {
	registry, err := NewRegistry(zap.NewNop())
	require.NoError(t, err)

	// 通配作业对任何画像可用
	jobs := registry.JobsForPersona("casual_browser")
	var ids []string
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	assert.Contains(t, ids, "product_discovery")
	assert.NotContains(t, ids, "research_comparison")

	// research_comparison 限定画像标签
	jobs = registry.JobsForPersona("researcher")
	ids = ids[:0]
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	assert.Contains(t, ids, "research_comparison")
}

func TestJobDefinition_RequiredTaskIDs(t *testing.T) {
	registry, err := NewRegistry(zap.NewNop())
	require.NoError(t, err)

	job, err := registry.Get("purchase_completion")
	require.NoError(t, err)

	required := job.RequiredTaskIDs()
	assert.Contains(t, required, "navigate_to_homepage")
	assert.Contains(t, required, "add_to_cart")
	assert.Contains(t, required, "proceed_to_checkout")
}

func TestRegistry_SharedTasks(t *testing.T) {
	registry, err := NewRegistry(zap.NewNop())
	require.NoError(t, err)

	task, ok := registry.SharedTask("explore_categories")
	require.True(t, ok)
	assert.Equal(t, "explore_categories", task.ID)

	_, ok = registry.SharedTask("not_a_task")
	assert.False(t, ok)
}
