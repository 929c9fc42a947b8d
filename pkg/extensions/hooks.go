package extensions

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// HookPoint is a point in command or query processing where hooks run
type HookPoint string

const (
	HookBeforeCommand HookPoint = "before_command"
	HookAfterCommand  HookPoint = "after_command"
	HookCommandFailed HookPoint = "command_failed"

	HookBeforeQuery HookPoint = "before_query"
	HookAfterQuery  HookPoint = "after_query"
	HookQueryFailed HookPoint = "query_failed"
)

// Hook is a function executed at a hook point
type Hook func(ctx context.Context, data HookData) error

// HookData describes the message being processed
type HookData struct {
	MessageType string
	Operation   string
	Duration    time.Duration
	Err         error
}

// HookManager dispatches registered hooks at each hook point
type HookManager struct {
	hooks map[HookPoint][]Hook
	mu    sync.RWMutex
}

// NewHookManager creates an empty hook manager
func NewHookManager() *HookManager {
	return &HookManager{
		hooks: make(map[HookPoint][]Hook),
	}
}

// Register adds a hook at a hook point
func (m *HookManager) Register(point HookPoint, hook Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[point] = append(m.hooks[point], hook)
}

// Execute runs all hooks at a point, stopping on the first failure
func (m *HookManager) Execute(ctx context.Context, point HookPoint, data HookData) error {
	m.mu.RLock()
	hooks := m.hooks[point]
	m.mu.RUnlock()

	for i, hook := range hooks {
		if err := hook(ctx, data); err != nil {
			return fmt.Errorf("hook %d at %s failed: %w", i, point, err)
		}
	}
	return nil
}

// ExecuteAsync runs hooks without blocking the caller. Errors are dropped.
func (m *HookManager) ExecuteAsync(ctx context.Context, point HookPoint, data HookData) {
	m.mu.RLock()
	hooks := m.hooks[point]
	m.mu.RUnlock()

	for _, hook := range hooks {
		go func(h Hook) {
			_ = h(ctx, data)
		}(hook)
	}
}

// Clear removes all hooks at a point
func (m *HookManager) Clear(point HookPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hooks, point)
}
