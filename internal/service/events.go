package service

import "time"

// 车场事件类型
const (
	EventTicketIssued = "ticket_issued"
	EventTicketClosed = "ticket_closed"
)

// Event 车场事件，经订阅通道推送给 WebSocket 广播
type Event struct {
	Type     string    `json:"type"`
	TicketID int64     `json:"ticket_id"`
	SpotID   string    `json:"spot_id"`
	Plate    string    `json:"plate"`
	Fee      float64   `json:"fee,omitempty"`
	At       time.Time `json:"at"`
}

// Subscribe 订阅车场事件
func (s *ParkingLot) Subscribe() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, 64)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// notifySubscribers 通知订阅者，慢消费者直接丢弃事件
func (s *ParkingLot) notifySubscribers(event Event) {
	s.mu.Lock()
	subscribers := s.subscribers
	s.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
