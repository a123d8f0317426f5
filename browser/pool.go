package browser

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/shopsim/internal/metrics"
)

// PoolConfig 会话池配置
type PoolConfig struct {
	// MaxSessions 池容量上限，通常 ≤ 5-10。
	MaxSessions int `json:"max_sessions" yaml:"max_sessions"`
	// IdleTimeout 空闲超过该时长的会话由后台维护回收。
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	// MaintenanceInterval 后台维护扫描间隔。
	MaintenanceInterval time.Duration `json:"maintenance_interval" yaml:"maintenance_interval"`
	// Session 会话级配置。
	Session Config `json:"session" yaml:"session"`
}

// DefaultPoolConfig 默认池配置
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxSessions:         5,
		IdleTimeout:         5 * time.Minute,
		MaintenanceInterval: 30 * time.Second,
		Session:             DefaultConfig(),
	}
}

// SessionPool 管理一组长驻浏览器会话，按需发放隔离子上下文。
//
// 全部簿记状态由单把互斥锁保护。会话创建与健康检查在持锁状态下进行：
// 这会让一次引擎启动阻塞其它调用者，但容量很小（≤5-10），接受这一取舍
// 以换取单锁的简单不变式。
type SessionPool struct {
	config   PoolConfig
	sessions map[string]*Session
	logger   *zap.Logger
	metrics  *metrics.Collector

	// 测试可替换的会话工厂。
	newSession func(Config, *zap.Logger) (*Session, error)

	closed   bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu sync.Mutex
}

// NewSessionPool 创建会话池并启动后台空闲回收。
func NewSessionPool(config PoolConfig, collector *metrics.Collector, logger *zap.Logger) *SessionPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &SessionPool{
		config:     config,
		sessions:   make(map[string]*Session),
		logger:     logger.With(zap.String("component", "session_pool")),
		metrics:    collector,
		newSession: newSession,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}

	go p.maintenanceLoop()

	p.logger.Info("session pool created",
		zap.Int("max_sessions", config.MaxSessions),
		zap.Duration("idle_timeout", config.IdleTimeout))
	return p
}

// AcquireContext 发放一个隔离子上下文。
//
// 顺序：复用空闲健康会话 → 未达容量则新建 → 全忙且满容量时立即返回
// ErrPoolExhausted，绝不无限等待。
// 健康检查失败的会话被透明替换，调用方感知不到。
func (p *SessionPool) AcquireContext() (*SubContext, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.metrics.RecordAcquire("closed")
		return nil, "", ErrPoolClosed
	}

	session, err := p.takeSessionLocked()
	if err != nil {
		p.metrics.RecordAcquire("exhausted")
		return nil, "", err
	}

	sub, err := session.newSubContext()
	if err != nil {
		// 子上下文创建失败视为会话损坏：替换为新会话再试一次。
		p.logger.Warn("sub-context creation failed, replacing session",
			zap.String("session_id", session.id), zap.Error(err))
		p.removeSessionLocked(session.id)
		session, err = p.createSessionLocked()
		if err != nil {
			p.metrics.RecordAcquire("error")
			return nil, "", err
		}
		session.inUse = true
		session.lastUsed = time.Now()
		if sub, err = session.newSubContext(); err != nil {
			p.removeSessionLocked(session.id)
			p.metrics.RecordAcquire("error")
			return nil, "", fmt.Errorf("failed to create sub-context: %w", err)
		}
	}

	p.metrics.RecordAcquire("ok")
	p.publishStatsLocked()
	p.logger.Debug("context acquired", zap.String("session_id", session.id))
	return sub, session.id, nil
}

// takeSessionLocked 选择或创建一个可用会话并标记占用。调用方必须持锁。
func (p *SessionPool) takeSessionLocked() (*Session, error) {
	// 复用空闲会话；不健康的当场替换。
	for id, session := range p.sessions {
		if session.inUse {
			continue
		}
		if err := session.healthy(); err != nil {
			p.logger.Warn("idle session unhealthy, tearing down",
				zap.String("session_id", id), zap.Error(err))
			p.removeSessionLocked(id)
			continue
		}
		session.inUse = true
		session.lastUsed = time.Now()
		return session, nil
	}

	// 容量之内直接新建。
	if len(p.sessions) < p.config.MaxSessions {
		session, err := p.createSessionLocked()
		if err != nil {
			return nil, err
		}
		session.inUse = true
		session.lastUsed = time.Now()
		return session, nil
	}

	// 走到这里说明所有会话都被占用且已满容量。
	return nil, ErrPoolExhausted
}

func (p *SessionPool) createSessionLocked() (*Session, error) {
	session, err := p.newSession(p.config.Session, p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	p.sessions[session.id] = session
	p.logger.Info("created new session", zap.String("session_id", session.id))
	return session, nil
}

func (p *SessionPool) removeSessionLocked(id string) {
	session, ok := p.sessions[id]
	if !ok {
		return
	}
	delete(p.sessions, id)
	session.close()
}

// ReleaseContext 归还子上下文并将会话标记为空闲。
// 所属会话已被回收时为 no-op：子上下文被防御性关闭后丢弃。
func (p *SessionPool) ReleaseContext(sub *SubContext, sessionID string) {
	if sub == nil {
		return
	}

	p.mu.Lock()
	session, ok := p.sessions[sessionID]
	if !ok {
		p.mu.Unlock()
		sub.Close()
		p.logger.Warn("released context for unknown session", zap.String("session_id", sessionID))
		return
	}

	sub.Close()
	session.dropSubContext(sub)
	session.inUse = false
	session.lastUsed = time.Now()
	p.publishStatsLocked()
	p.mu.Unlock()

	p.logger.Debug("context released", zap.String("session_id", sessionID))
}

// maintenanceLoop 周期性回收空闲超时的会话。
func (p *SessionPool) maintenanceLoop() {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.reapIdle(time.Now())
		case <-p.stopCh:
			return
		}
	}
}

// reapIdle 回收空闲超过 IdleTimeout 的会话。只在扫描与摘除期间持锁，
// 慢速的进程终止在锁外执行；绝不回收被占用的会话。
func (p *SessionPool) reapIdle(now time.Time) {
	p.mu.Lock()
	var expired []*Session
	for id, session := range p.sessions {
		if session.inUse {
			continue
		}
		if now.Sub(session.lastUsed) > p.config.IdleTimeout {
			delete(p.sessions, id)
			expired = append(expired, session)
		}
	}
	p.publishStatsLocked()
	p.mu.Unlock()

	for _, session := range expired {
		p.logger.Info("evicting idle session",
			zap.String("session_id", session.id),
			zap.Duration("idle", now.Sub(session.lastUsed)))
		session.close()
		p.metrics.RecordEviction()
	}
}

// Shutdown 终止所有会话并停止后台维护；可重复调用。
func (p *SessionPool) Shutdown() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	<-p.doneCh

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	sessions := make([]*Session, 0, len(p.sessions))
	for _, session := range p.sessions {
		sessions = append(sessions, session)
	}
	p.sessions = make(map[string]*Session)
	p.publishStatsLocked()
	p.mu.Unlock()

	for _, session := range sessions {
		session.close()
	}
	p.logger.Info("session pool shut down")
}

// Stats 返回池内空闲/占用/总数。
func (p *SessionPool) Stats() (idle, active, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, session := range p.sessions {
		if session.inUse {
			active++
		} else {
			idle++
		}
	}
	return idle, active, idle + active
}

func (p *SessionPool) publishStatsLocked() {
	idle, active := 0, 0
	for _, session := range p.sessions {
		if session.inUse {
			active++
		} else {
			idle++
		}
	}
	p.metrics.SetPoolSessions(idle, active)
}
