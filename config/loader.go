// Package config 统一配置加载，支持 YAML 文件 + 环境变量覆盖。
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("SHOPSIM").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/BaSui01/shopsim/browser"
)

// Config 是模拟引擎的完整配置结构
type Config struct {
	// Pool 浏览器会话池配置
	Pool PoolConfig `yaml:"pool" env:"POOL"`

	// Browser 单个会话配置
	Browser BrowserConfig `yaml:"browser" env:"BROWSER"`

	// Evaluation 评估执行配置
	Evaluation EvaluationConfig `yaml:"evaluation" env:"EVALUATION"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`
}

// PoolConfig 会话池配置
type PoolConfig struct {
	// 池容量上限
	MaxSessions int `yaml:"max_sessions" env:"MAX_SESSIONS"`
	// 空闲会话回收阈值
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	// 后台维护扫描间隔
	MaintenanceInterval time.Duration `yaml:"maintenance_interval" env:"MAINTENANCE_INTERVAL"`
}

// BrowserConfig 浏览器会话配置
type BrowserConfig struct {
	// 是否无头运行
	Headless bool `yaml:"headless" env:"HEADLESS"`
	// 单次操作超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 默认视口宽度
	ViewportWidth int `yaml:"viewport_width" env:"VIEWPORT_WIDTH"`
	// 默认视口高度
	ViewportHeight int `yaml:"viewport_height" env:"VIEWPORT_HEIGHT"`
	// 自定义 User-Agent（可选）
	UserAgent string `yaml:"user_agent" env:"USER_AGENT"`
	// 截图输出目录，留空禁用截图
	ScreenshotDir string `yaml:"screenshot_dir" env:"SCREENSHOT_DIR"`
}

// EvaluationConfig 评估执行配置
type EvaluationConfig struct {
	// 并发执行的作业数上限
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs" env:"MAX_CONCURRENT_JOBS"`
	// 随机种子，0 表示使用时间种子
	Seed int64 `yaml:"seed" env:"SEED"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// PoolConfig 转换为会话池的运行时配置。
func (c *Config) BrowserPoolConfig() browser.PoolConfig {
	return browser.PoolConfig{
		MaxSessions:         c.Pool.MaxSessions,
		IdleTimeout:         c.Pool.IdleTimeout,
		MaintenanceInterval: c.Pool.MaintenanceInterval,
		Session: browser.Config{
			Headless:       c.Browser.Headless,
			Timeout:        c.Browser.Timeout,
			ViewportWidth:  c.Browser.ViewportWidth,
			ViewportHeight: c.Browser.ViewportHeight,
			UserAgent:      c.Browser.UserAgent,
			ScreenshotDir:  c.Browser.ScreenshotDir,
		},
	}
}

// BuildLogger 按日志配置构造 zap.Logger。
func (c *LogConfig) BuildLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if c.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level
	if len(c.OutputPaths) > 0 {
		zapCfg.OutputPaths = c.OutputPaths
	}
	return zapCfg.Build()
}

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "SHOPSIM",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath 设置配置文件路径
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile 从 YAML 文件加载配置
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在，使用默认值
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// loadFromEnv 从环境变量加载配置
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv 递归设置结构体字段
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}
	return nil
}

// setFieldValue 设置字段值
func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// 特殊处理 time.Duration
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// 支持逗号分隔的字符串切片
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
	return nil
}

// MustLoad 加载配置，失败时 panic
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.Pool.MaxSessions <= 0 {
		errs = append(errs, "pool.max_sessions must be positive")
	}
	if c.Pool.MaintenanceInterval <= 0 {
		errs = append(errs, "pool.maintenance_interval must be positive")
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		errs = append(errs, "browser viewport must be positive")
	}
	if c.Evaluation.MaxConcurrentJobs <= 0 {
		errs = append(errs, "evaluation.max_concurrent_jobs must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
