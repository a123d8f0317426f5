package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session 是一个长驻的 chromedp 浏览器进程，可派生多个隔离子上下文。
// inUse/lastUsed 等簿记字段由池锁保护，Session 自身只管驱动调用。
type Session struct {
	id            string
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	config        Config
	logger        *zap.Logger

	createdAt time.Time
	lastUsed  time.Time
	inUse     bool
	contexts  map[*SubContext]struct{}

	// 测试替身入口：非 nil 时取代真实的 chromedp 调用。
	ping  func() error
	spawn func() (*SubContext, error)

	mu sync.Mutex
}

// newSession 启动一个新的浏览器进程。
func newSession(config Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", config.Headless),
		chromedp.WindowSize(config.ViewportWidth, config.ViewportHeight),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:            uuid.NewString(),
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		config:        config,
		logger:        logger.With(zap.String("component", "session"), zap.String("session_id", "")),
		createdAt:     time.Now(),
		lastUsed:      time.Now(),
		contexts:      make(map[*SubContext]struct{}),
	}
	s.logger = logger.With(zap.String("component", "session"), zap.String("session_id", s.id))

	// 启动浏览器
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	s.logger.Info("browser session started",
		zap.Bool("headless", config.Headless),
		zap.Int("viewport_w", config.ViewportWidth),
		zap.Int("viewport_h", config.ViewportHeight))

	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// healthy 对浏览器做一次廉价探活调用。
func (s *Session) healthy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ping != nil {
		return s.ping()
	}

	ctx, cancel := context.WithTimeout(s.browserCtx, 3*time.Second)
	defer cancel()

	var out int
	if err := chromedp.Run(ctx, chromedp.Evaluate("1 + 1", &out)); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnhealthy, err)
	}
	return nil
}

// newSubContext 在本会话内创建一个 cookie/storage 隔离的浏览子上下文。
func (s *Session) newSubContext() (*SubContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spawn != nil {
		sub, err := s.spawn()
		if err == nil {
			s.contexts[sub] = struct{}{}
		}
		return sub, err
	}

	c := chromedp.FromContext(s.browserCtx)
	if c == nil || c.Browser == nil {
		return nil, fmt.Errorf("session %s has no live browser", s.id)
	}
	execCtx := cdp.WithExecutor(s.browserCtx, c.Browser)

	bctxID, err := target.CreateBrowserContext().WithDisposeOnDetach(true).Do(execCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	targetID, err := target.CreateTarget("about:blank").WithBrowserContextID(bctxID).Do(execCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to create target: %w", err)
	}

	ctx, cancel := chromedp.NewContext(s.browserCtx, chromedp.WithTargetID(targetID))
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to attach to target: %w", err)
	}

	sub := &SubContext{
		sessionID: s.id,
		parent:    s.browserCtx,
		bctxID:    bctxID,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.contexts[sub] = struct{}{}
	return sub, nil
}

// dropSubContext 从会话簿记中移除子上下文。
func (s *Session) dropSubContext(sub *SubContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, sub)
}

// close 关闭所有子上下文并终止浏览器进程。
func (s *Session) close() {
	s.mu.Lock()
	contexts := make([]*SubContext, 0, len(s.contexts))
	for sub := range s.contexts {
		contexts = append(contexts, sub)
	}
	s.contexts = make(map[*SubContext]struct{})
	s.mu.Unlock()

	for _, sub := range contexts {
		sub.Close()
	}

	s.logger.Info("closing browser session")
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

// SubContext 是会话内的隔离浏览上下文，同一时刻至多一个使用者。
type SubContext struct {
	sessionID string
	parent    context.Context
	bctxID    cdp.BrowserContextID
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool
	mu        sync.Mutex
}

// SessionID returns the owning session's id.
func (sc *SubContext) SessionID() string { return sc.sessionID }

// Context returns the chromedp context bound to this sub-context's target.
func (sc *SubContext) Context() context.Context {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.ctx
}

// Recreate 关闭当前页面目标并在同一隔离上下文中新建一个。
// 用于页面崩溃恢复：cookie/storage 保留，页面状态丢失。
func (sc *SubContext) Recreate() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed {
		return fmt.Errorf("sub-context already closed")
	}

	sc.cancel()

	c := chromedp.FromContext(sc.parent)
	if c == nil || c.Browser == nil {
		return fmt.Errorf("parent session has no live browser")
	}
	execCtx := cdp.WithExecutor(sc.parent, c.Browser)

	targetID, err := target.CreateTarget("about:blank").WithBrowserContextID(sc.bctxID).Do(execCtx)
	if err != nil {
		return fmt.Errorf("failed to recreate target: %w", err)
	}

	ctx, cancel := chromedp.NewContext(sc.parent, chromedp.WithTargetID(targetID))
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return fmt.Errorf("failed to attach to recreated target: %w", err)
	}

	sc.ctx = ctx
	sc.cancel = cancel
	return nil
}

// Close 释放目标与隔离上下文；可重复调用。
func (sc *SubContext) Close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed {
		return
	}
	sc.closed = true
	if sc.cancel != nil {
		sc.cancel()
	}
	if sc.parent == nil {
		return
	}

	// 尽力释放浏览器侧的隔离上下文；会话可能已经不在了。
	if c := chromedp.FromContext(sc.parent); c != nil && c.Browser != nil {
		execCtx := cdp.WithExecutor(sc.parent, c.Browser)
		_ = target.DisposeBrowserContext(sc.bctxID).Do(execCtx)
	}
}
