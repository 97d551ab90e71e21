package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
)

// 停车票状态常量
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// 事件常量
const (
	EventClose = "close"
)

// Machine 停车票生命周期状态机
// open -> closed 只允许发生一次，转换不可逆
type Machine struct {
	mu  sync.RWMutex
	fsm *fsm.FSM
}

// NewMachine 创建状态机，初始状态为 open
func NewMachine() *Machine {
	m := &Machine{}

	m.fsm = fsm.NewFSM(
		StateOpen,
		fsm.Events{
			{Name: EventClose, Src: []string{StateOpen}, Dst: StateClosed},
		},
		fsm.Callbacks{},
	)

	return m
}

// Current 获取当前状态
func (m *Machine) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Current()
}

// Trigger 触发事件，非法转换返回错误
// 并发触发同一事件时只有一个调用方成功，保证 close 的原子性
func (m *Machine) Trigger(event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fsm.Event(context.Background(), event); err != nil {
		return fmt.Errorf("trigger event %s: %w", event, err)
	}
	return nil
}

// CanTransition 检查是否可以转换
func (m *Machine) CanTransition(event string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fsm.Can(event)
}
