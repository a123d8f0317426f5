// Package browser provides the automation session layer: a bounded pool of
// chromedp browser sessions, isolated sub-contexts, and a persona-adaptive
// facade over page actions.
package browser

import "time"

// Config configures one automation session.
type Config struct {
	Headless       bool          `json:"headless" yaml:"headless"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`
	ViewportWidth  int           `json:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int           `json:"viewport_height" yaml:"viewport_height"`
	UserAgent      string        `json:"user_agent,omitempty" yaml:"user_agent"`
	ScreenshotDir  string        `json:"screenshot_dir" yaml:"screenshot_dir"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:       true,
		Timeout:        60 * time.Second,
		ViewportWidth:  1280,
		ViewportHeight: 800,
		ScreenshotDir:  "screenshots",
	}
}

// Viewport is a width/height pair in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ViewportForDevice maps a persona's primary device to a realistic viewport.
func ViewportForDevice(device string) Viewport {
	switch device {
	case "mobile":
		return Viewport{Width: 375, Height: 667}
	case "tablet":
		return Viewport{Width: 768, Height: 1024}
	default:
		return Viewport{Width: 1280, Height: 800}
	}
}

// NavigationResult 是一次导航的结构化结果，导航失败不抛错。
type NavigationResult struct {
	Success    bool          `json:"success"`
	LoadTime   time.Duration `json:"load_time,omitempty"`
	Status     int64         `json:"status,omitempty"`
	Error      string        `json:"error,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"`
}

// ActionResult 是 search/add-to-cart/checkout 等高层动作的结构化结果。
type ActionResult struct {
	Success    bool          `json:"success"`
	TimeTaken  time.Duration `json:"time_taken,omitempty"`
	SearchTerm string        `json:"search_term,omitempty"`
	Error      string        `json:"error,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"`
}

// Event 是执行期间记录的行为事件。
type Event struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SinceLast time.Duration  `json:"since_last"`
	Data      map[string]any `json:"data,omitempty"`
}

// NavigationRecord 是导航历史中的一条记录。
type NavigationRecord struct {
	URL       string        `json:"url"`
	StartedAt time.Time     `json:"started_at"`
	LoadTime  time.Duration `json:"load_time"`
	Status    int64         `json:"status,omitempty"`
}

// ScrollDistance controls how far a scroll action moves.
type ScrollDistance string

const (
	ScrollShort  ScrollDistance = "short"
	ScrollMedium ScrollDistance = "medium"
	ScrollLong   ScrollDistance = "long"
)

// ScrollDirection controls which way a scroll action moves.
type ScrollDirection string

const (
	ScrollDown ScrollDirection = "down"
	ScrollUp   ScrollDirection = "up"
)
