package service

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/guregu/null.v4"

	"github.com/langchou/parkmate/internal/allocator"
	"github.com/langchou/parkmate/internal/clock"
	"github.com/langchou/parkmate/internal/fee"
	"github.com/langchou/parkmate/internal/models"
	"github.com/langchou/parkmate/internal/payment"
)

// 拓扑管理的预期结果
var (
	ErrBuildingNotFound = errors.New("building not found")
	ErrFloorNotFound    = errors.New("floor not found")
)

// ParkingLot 车场协调器
//
// 楼宇/楼层/车位树、票号计数器和在场票据注册表是仅有的共享可变
// 状态，全部由同一把互斥锁保护。Park/Unpark 操作开销小且不阻塞，
// 粗粒度加锁足够；支付协作方一定在锁外调用。
type ParkingLot struct {
	logger    *zap.Logger
	clock     clock.Clock
	strategy  allocator.Strategy
	feePolicy *fee.Policy

	mu            sync.Mutex
	buildings     []*models.Building
	buildingIndex map[string]*models.Building
	floorIndex    map[string]*models.Floor
	spotIndex     map[string]*models.Spot
	entrances     []models.Gate
	exits         []models.Gate
	ticketCounter int64
	activeTickets map[int64]*models.Ticket
	subscribers   []chan Event
}

// NewParkingLot 创建车场协调器
// 分配策略与计费策略以依赖注入方式传入，便于替换与测试
func NewParkingLot(logger *zap.Logger, clk clock.Clock, strategy allocator.Strategy, feePolicy *fee.Policy) *ParkingLot {
	return &ParkingLot{
		logger:        logger,
		clock:         clk,
		strategy:      strategy,
		feePolicy:     feePolicy,
		buildingIndex: make(map[string]*models.Building),
		floorIndex:    make(map[string]*models.Floor),
		spotIndex:     make(map[string]*models.Spot),
		activeTickets: make(map[int64]*models.Ticket),
	}
}

// Park 车辆入场
//
// 由分配策略选出车位后预留车位、分配下一个票号并登记 open 票据，
// 整个过程持锁完成，两次并发 Park 不会拿到同一个车位。没有可用
// 车位时返回 ErrLotFull，这是正常结果而非故障。
func (s *ParkingLot) Park(vehicle models.Vehicle) (*models.Ticket, error) {
	s.mu.Lock()
	spot := s.strategy.Select(s.buildings, vehicle.Type)
	if spot == nil {
		s.mu.Unlock()
		parkRejectedTotal.Inc()
		s.logger.Info("No spot available",
			zap.String("plate", vehicle.LicensePlate),
			zap.String("vehicle_type", string(vehicle.Type)))
		return nil, models.ErrLotFull
	}

	if err := spot.Assign(vehicle); err != nil {
		// 策略返回了已占用的车位，说明策略实现有缺陷
		s.mu.Unlock()
		s.logger.Error("Strategy selected an occupied spot",
			zap.String("spot_id", spot.ID), zap.Error(err))
		return nil, err
	}

	s.ticketCounter++
	ticket := models.NewTicket(s.ticketCounter, vehicle, spot.ID, s.clock.Now())
	s.activeTickets[ticket.ID] = ticket
	// 锁内取快照，调用方拿到的副本不随后续离场变化
	snapshot := *ticket
	s.mu.Unlock()

	parkTotal.Inc()
	occupiedSpots.Inc()
	s.logger.Info("Vehicle parked",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("plate", vehicle.LicensePlate),
		zap.String("spot_id", spot.ID))

	s.notifySubscribers(Event{
		Type:     EventTicketIssued,
		TicketID: ticket.ID,
		SpotID:   spot.ID,
		Plate:    vehicle.LicensePlate,
		At:       ticket.EntryTime,
	})

	return &snapshot, nil
}

// Unpark 车辆离场
//
// 票号未知或已关闭都返回 ErrTicketNotFound，对调用方不可区分。
// 关闭转换由票据状态机原子完成，并发对同一票号重复离场只有一个
// 调用方成功。票据字段（状态、出场时间、费用、缴费标记）全部在
// 协调器锁内写入，与快照查询互斥；只有支付在锁外进行。支付失败
// 时车辆已经离开，车位照常释放、票据照常注销，费用连同
// ErrPaymentFailed 一起返回，票据保持未缴费标记。
func (s *ParkingLot) Unpark(ticketID int64, method payment.Method) (float64, error) {
	now := s.clock.Now()

	s.mu.Lock()
	ticket, ok := s.activeTickets[ticketID]
	if !ok {
		s.mu.Unlock()
		return 0, models.ErrTicketNotFound
	}

	if err := ticket.Close(now); err != nil {
		s.mu.Unlock()
		if errors.Is(err, models.ErrTicketAlreadyClosed) {
			// 并发离场竞争的败方：已关闭票据等同未知票号
			return 0, models.ErrTicketNotFound
		}
		return 0, err
	}

	amount, err := s.feePolicy.Calculate(ticket.EntryTime, now, now)
	if err != nil {
		// Close 已校验 now 不早于入场时间，此分支正常不可达；
		// 兜底释放并注销，避免已关闭的票据永久占用车位
		if spot, ok := s.spotIndex[ticket.SpotID]; ok {
			_ = spot.Release()
		}
		delete(s.activeTickets, ticketID)
		s.mu.Unlock()
		return 0, err
	}
	ticket.Fee = null.FloatFrom(amount)
	s.mu.Unlock()

	// 外部协作方，不持锁调用
	payErr := method.Pay(amount)

	s.mu.Lock()
	if spot, ok := s.spotIndex[ticket.SpotID]; ok {
		if err := spot.Release(); err != nil {
			// 状态机保证每张票只释放一次，走到这里说明注册表被绕过
			s.logger.Error("Release on a free spot",
				zap.String("spot_id", spot.ID), zap.Error(err))
		}
	}
	delete(s.activeTickets, ticketID)
	if payErr == nil {
		ticket.FeePaid = true
	}
	s.mu.Unlock()

	unparkTotal.Inc()
	occupiedSpots.Dec()

	if payErr != nil {
		s.logger.Warn("Payment failed",
			zap.Int64("ticket_id", ticketID),
			zap.Float64("fee", amount),
			zap.Error(payErr))
		return amount, models.ErrPaymentFailed
	}

	s.logger.Info("Vehicle unparked",
		zap.Int64("ticket_id", ticketID),
		zap.Float64("fee", amount))

	s.notifySubscribers(Event{
		Type:     EventTicketClosed,
		TicketID: ticket.ID,
		SpotID:   ticket.SpotID,
		Plate:    ticket.Vehicle.LicensePlate,
		Fee:      amount,
		At:       now,
	})

	return amount, nil
}

// Ticket 按票号查询在场票据，返回快照副本
func (s *ParkingLot) Ticket(ticketID int64) (models.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.activeTickets[ticketID]
	if !ok {
		return models.Ticket{}, false
	}
	return *ticket, true
}

// ActiveTickets 返回在场票据快照，按票号升序
func (s *ParkingLot) ActiveTickets() []models.Ticket {
	s.mu.Lock()
	tickets := make([]models.Ticket, 0, len(s.activeTickets))
	for _, t := range s.activeTickets {
		tickets = append(tickets, *t)
	}
	s.mu.Unlock()

	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets
}

// ActiveTicketCount 在场票据数量
func (s *ParkingLot) ActiveTicketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeTickets)
}
