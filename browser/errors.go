package browser

import "errors"

var (
	// ErrPoolExhausted 池已满且无空闲会话可回收
	ErrPoolExhausted = errors.New("session pool exhausted")

	// ErrPoolClosed 池已关闭
	ErrPoolClosed = errors.New("session pool is closed")

	// ErrSessionUnhealthy 会话健康检查失败
	ErrSessionUnhealthy = errors.New("session failed health check")
)
