package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Pool:       DefaultPoolConfig(),
		Browser:    DefaultBrowserConfig(),
		Evaluation: DefaultEvaluationConfig(),
		Log:        DefaultLogConfig(),
	}
}

// DefaultPoolConfig 返回默认会话池配置
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxSessions:         5,
		IdleTimeout:         5 * time.Minute,
		MaintenanceInterval: 30 * time.Second,
	}
}

// DefaultBrowserConfig 返回默认浏览器配置
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:       true,
		Timeout:        60 * time.Second,
		ViewportWidth:  1280,
		ViewportHeight: 800,
		ScreenshotDir:  "screenshots",
	}
}

// DefaultEvaluationConfig 返回默认评估配置
func DefaultEvaluationConfig() EvaluationConfig {
	return EvaluationConfig{
		MaxConcurrentJobs: 3,
		Seed:              0,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stderr"},
	}
}
