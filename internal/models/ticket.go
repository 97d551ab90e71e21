package models

import (
	"time"

	"gopkg.in/guregu/null.v4"

	"github.com/langchou/parkmate/internal/state"
)

// Ticket 停车票，绑定一辆车与一个车位的单次停车会话
// 票号由协调器单调递增分配，永不复用
// 关闭转换由内部状态机原子裁决；可变字段与快照读取的互斥
// 由持有注册表的协调器负责，Ticket 本身不加锁
type Ticket struct {
	ID        int64      `json:"ticket_id"`
	Vehicle   Vehicle    `json:"vehicle"`
	SpotID    string     `json:"spot_id"` // 指向拥有集合中车位的句柄
	Status    string     `json:"status"`
	EntryTime time.Time  `json:"entry_time"`
	ExitTime  null.Time  `json:"exit_time"`
	Fee       null.Float `json:"fee"`
	FeePaid   bool       `json:"fee_paid"`

	sm *state.Machine
}

// NewTicket 签发一张 open 状态的停车票
func NewTicket(id int64, vehicle Vehicle, spotID string, entryTime time.Time) *Ticket {
	return &Ticket{
		ID:        id,
		Vehicle:   vehicle,
		SpotID:    spotID,
		Status:    state.StateOpen,
		EntryTime: entryTime,
		sm:        state.NewMachine(),
	}
}

// Close 关闭停车票并记录出场时间
// open -> closed 只发生一次；并发关闭时只有一个调用方成功，
// 其余得到 ErrTicketAlreadyClosed
func (t *Ticket) Close(exitTime time.Time) error {
	if exitTime.Before(t.EntryTime) {
		return ErrInvalidInterval
	}
	if err := t.sm.Trigger(state.EventClose); err != nil {
		return ErrTicketAlreadyClosed
	}
	t.Status = state.StateClosed
	t.ExitTime = null.TimeFrom(exitTime)
	return nil
}

// IsOpen 停车票是否仍处于 open 状态
func (t *Ticket) IsOpen() bool {
	return t.sm.Current() == state.StateOpen
}
