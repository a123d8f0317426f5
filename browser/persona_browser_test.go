// 画像浏览器测试：节奏模型、打字速度与导航流程，
// 通过 run/sleep 替身避免驱动真实页面。
package browser

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/shopsim/persona"
)

func newTestBrowser(traits persona.Traits) *PersonaBrowser {
	b := &PersonaBrowser{
		logger:         zap.NewNop(),
		rng:            rand.New(rand.NewSource(7)),
		traits:         traits,
		selectors:      DefaultSelectors(),
		siteType:       SiteDefault,
		lastAction:     time.Now(),
		loadTimes:      make(map[string]time.Duration),
		defaultTimeout: 30 * time.Second,
		sleep:          func(time.Duration) {},
	}
	b.run = func(timeout time.Duration, actions ...chromedp.Action) error { return nil }
	b.navigate = func(timeout time.Duration, url string) (int64, error) { return 200, nil }
	return b
}

func TestPacingFactor(t *testing.T) {
	tests := []struct {
		name     string
		patience int
		tech     int
		want     float64
	}{
		{"baseline", 5, 10, 1.0},
		{"impatient expert", 1, 10, 0.5},
		{"patient novice capped", 10, 2, 1.5 * 1.3},
		{"moderate", 3, 8, 0.6 * 1.25},
		{"zero tech guarded", 5, 0, 1.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBrowser(persona.Traits{PatienceLevel: tt.patience, TechProficiency: tt.tech})
			assert.InDelta(t, tt.want, b.PacingFactor(), 1e-9)
		})
	}
}

func TestTypingSpeed(t *testing.T) {
	tests := []struct {
		name string
		tech int
		age  int
		want time.Duration
	}{
		{"average adult", 5, 30, 100 * time.Millisecond},
		{"expert adult", 10, 30, 50 * time.Millisecond},
		{"young user faster", 5, 20, 80 * time.Millisecond},
		{"senior user slower", 5, 70, 130 * time.Millisecond},
		{"senior novice", 2, 65, 169 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBrowser(persona.Traits{TechProficiency: tt.tech, Age: tt.age})
			assert.Equal(t, tt.want, b.TypingSpeed())
		})
	}
}

func TestRealisticDelayScalesWithPacing(t *testing.T) {
	b := newTestBrowser(persona.Traits{PatienceLevel: 10, TechProficiency: 2})
	factor := b.PacingFactor()
	require.InDelta(t, 1.95, factor, 1e-9)

	var slept []time.Duration
	b.sleep = func(d time.Duration) { slept = append(slept, d) }

	min, max := time.Second, 2*time.Second
	for i := 0; i < 50; i++ {
		b.Pause(min, max)
	}

	require.Len(t, slept, 50)
	lo := time.Duration(float64(min) * factor)
	hi := time.Duration(float64(max) * factor)
	for _, d := range slept {
		assert.GreaterOrEqual(t, d, lo)
		assert.LessOrEqual(t, d, hi)
	}
}

func TestViewportForDevice(t *testing.T) {
	assert.Equal(t, Viewport{Width: 375, Height: 667}, ViewportForDevice("mobile"))
	assert.Equal(t, Viewport{Width: 768, Height: 1024}, ViewportForDevice("tablet"))
	assert.Equal(t, Viewport{Width: 1280, Height: 800}, ViewportForDevice("desktop"))
	assert.Equal(t, Viewport{Width: 1280, Height: 800}, ViewportForDevice(""))
}

func TestTrackEventRecordsGaps(t *testing.T) {
	b := newTestBrowser(persona.Traits{})
	b.lastAction = time.Now().Add(-2 * time.Second)

	b.trackEvent("click", map[string]any{"selector": ".price"})
	b.trackEvent("scroll", nil)

	events := b.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "click", events[0].Type)
	assert.GreaterOrEqual(t, events[0].SinceLast, 2*time.Second)
	assert.Less(t, events[1].SinceLast, time.Second)

	// 返回的是副本
	events[0].Type = "mutated"
	assert.Equal(t, "click", b.Events()[0].Type)
}

func TestNavigateRecordsHistory(t *testing.T) {
	b := newTestBrowser(persona.Traits{PatienceLevel: 5, TechProficiency: 8, AttentionSpan: 6})

	result := b.Navigate("https://shop.test")

	require.True(t, result.Success)
	assert.Equal(t, int64(200), result.Status)
	assert.Equal(t, "https://shop.test", b.CurrentURL())

	history := b.NavigationHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "https://shop.test", history[0].URL)
	assert.Equal(t, int64(200), history[0].Status)

	loadTimes := b.PageLoadTimes()
	assert.Contains(t, loadTimes, "https://shop.test")

	var types []string
	for _, event := range b.Events() {
		types = append(types, event.Type)
	}
	assert.Contains(t, types, "navigation")
	// 加载后的习惯性扫视产生滚动事件
	assert.Contains(t, types, "scroll")
}

func TestNavigateFailureIncrementsFrustration(t *testing.T) {
	b := newTestBrowser(persona.Traits{PatienceLevel: 5, TechProficiency: 8})

	b.navigate = func(timeout time.Duration, url string) (int64, error) {
		return 0, errors.New("net::ERR_CONNECTION_REFUSED")
	}

	result := b.Navigate("https://down.test")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "ERR_CONNECTION_REFUSED")
	assert.Equal(t, 1, b.FrustrationCount())
	assert.Empty(t, b.NavigationHistory())
	assert.Empty(t, b.CurrentURL())
}

func TestFindElementTimeoutDefaultsToPatience(t *testing.T) {
	b := newTestBrowser(persona.Traits{PatienceLevel: 4, TechProficiency: 9})

	var waitTimeout time.Duration
	calls := 0
	b.run = func(timeout time.Duration, actions ...chromedp.Action) error {
		calls++
		if calls == 2 {
			waitTimeout = timeout
			return errors.New("waiting for selector timed out")
		}
		return nil
	}

	found := b.FindElement(".missing", 0)

	assert.False(t, found)
	assert.Equal(t, 1, b.FrustrationCount())
	// 1s 基准 + patience 秒
	assert.Equal(t, 5*time.Second, waitTimeout)
}

func TestCaptureScreenshotWithoutDirIsDisabled(t *testing.T) {
	b := newTestBrowser(persona.Traits{})
	assert.Equal(t, "", b.CaptureScreenshot("anything"))
}

func TestClampFloat(t *testing.T) {
	assert.Equal(t, 0.5, clampFloat(0.2, 0.5, 1.5))
	assert.Equal(t, 1.5, clampFloat(2.0, 0.5, 1.5))
	assert.Equal(t, 1.0, clampFloat(1.0, 0.5, 1.5))
}
