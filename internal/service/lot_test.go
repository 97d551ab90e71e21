package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/langchou/parkmate/internal/allocator"
	"github.com/langchou/parkmate/internal/clock"
	"github.com/langchou/parkmate/internal/fee"
	"github.com/langchou/parkmate/internal/models"
)

// 2025-01-06 是周一，按工作日费率计费
var testNow = time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

type okPayment struct{}

func (okPayment) Pay(amount float64) error { return nil }

type failingPayment struct{}

func (failingPayment) Pay(amount float64) error { return errors.New("gateway timeout") }

// slowPayment 拉长锁外支付窗口，暴露与快照查询的竞争
type slowPayment struct{}

func (slowPayment) Pay(amount float64) error {
	time.Sleep(20 * time.Millisecond)
	return nil
}

// newTestLot 构建带 carSpots 个小车位的单楼单层车场
func newTestLot(t *testing.T, carSpots int) *ParkingLot {
	t.Helper()

	lot := NewParkingLot(zap.NewNop(), clock.NewFixed(testNow), allocator.FirstFit{}, fee.Default())

	building := models.NewBuilding("B1")
	floor := models.NewFloor(1)
	for i := 0; i < carSpots; i++ {
		floor.AddSpot(models.NewSpot(models.VehicleTypeCar, false))
	}
	building.AddFloor(floor)
	lot.AddBuilding(building)
	return lot
}

func mustVehicle(t *testing.T, plate string) models.Vehicle {
	t.Helper()
	vehicle, err := models.NewVehicle(plate, "CAR")
	require.NoError(t, err)
	return vehicle
}

func TestParkingLotPark(t *testing.T) {
	t.Run("issues open ticket bound to a reserved spot", func(t *testing.T) {
		lot := newTestLot(t, 2)

		ticket, err := lot.Park(mustVehicle(t, "KA-01-HH-1234"))
		require.NoError(t, err)
		require.Equal(t, int64(1), ticket.ID)
		require.True(t, ticket.IsOpen())
		require.Equal(t, testNow, ticket.EntryTime)
		require.NotEmpty(t, ticket.SpotID)
		require.Equal(t, 1, lot.ActiveTicketCount())

		// 被预留的车位不再可用
		require.Len(t, lot.AvailableSpots(models.VehicleTypeCar), 1)
	})

	t.Run("every open ticket references a distinct spot", func(t *testing.T) {
		lot := newTestLot(t, 5)

		seen := make(map[string]bool)
		for i := 0; i < 5; i++ {
			ticket, err := lot.Park(mustVehicle(t, "PLATE-"+string(rune('A'+i))))
			require.NoError(t, err)
			require.False(t, seen[ticket.SpotID])
			seen[ticket.SpotID] = true
		}
	})

	t.Run("full lot is an expected outcome", func(t *testing.T) {
		lot := newTestLot(t, 1)

		_, err := lot.Park(mustVehicle(t, "KA-01-HH-1234"))
		require.NoError(t, err)

		_, err = lot.Park(mustVehicle(t, "KA-01-HH-9999"))
		require.ErrorIs(t, err, models.ErrLotFull)
		require.Equal(t, 1, lot.ActiveTicketCount())
	})

	t.Run("no matching type means full for that vehicle", func(t *testing.T) {
		lot := newTestLot(t, 3)

		bus, err := models.NewVehicle("KA-01-BUS-1", "BUS")
		require.NoError(t, err)
		_, err = lot.Park(bus)
		require.ErrorIs(t, err, models.ErrLotFull)
	})

	t.Run("first fit scans later buildings when the first is full", func(t *testing.T) {
		lot := newTestLot(t, 1)

		second := models.NewBuilding("B2")
		floor := models.NewFloor(1)
		overflow := models.NewSpot(models.VehicleTypeCar, false)
		floor.AddSpot(overflow)
		second.AddFloor(floor)
		lot.AddBuilding(second)

		_, err := lot.Park(mustVehicle(t, "FIRST"))
		require.NoError(t, err)

		ticket, err := lot.Park(mustVehicle(t, "SECOND"))
		require.NoError(t, err)
		require.Equal(t, overflow.ID, ticket.SpotID)
	})
}

func TestParkingLotUnpark(t *testing.T) {
	t.Run("closes ticket, charges fee, frees the spot", func(t *testing.T) {
		lot := newTestLot(t, 1)

		ticket, err := lot.Park(mustVehicle(t, "KA-01-HH-1234"))
		require.NoError(t, err)

		// 固定时钟下零时长，最低按 1 小时工作日费率计费
		amount, err := lot.Unpark(ticket.ID, okPayment{})
		require.NoError(t, err)
		require.Equal(t, float64(fee.DefaultWeekdayRate), amount)
		require.Equal(t, 0, lot.ActiveTicketCount())

		// 车位回到可分配池
		require.Len(t, lot.AvailableSpots(models.VehicleTypeCar), 1)
	})

	t.Run("freed spot is reallocated", func(t *testing.T) {
		lot := newTestLot(t, 1)

		first, err := lot.Park(mustVehicle(t, "FIRST"))
		require.NoError(t, err)
		_, err = lot.Unpark(first.ID, okPayment{})
		require.NoError(t, err)

		second, err := lot.Park(mustVehicle(t, "SECOND"))
		require.NoError(t, err)
		require.Equal(t, first.SpotID, second.SpotID)
		// 票号单调递增，从不复用
		require.Greater(t, second.ID, first.ID)
	})

	t.Run("unknown ticket id", func(t *testing.T) {
		lot := newTestLot(t, 1)

		_, err := lot.Unpark(42, okPayment{})
		require.ErrorIs(t, err, models.ErrTicketNotFound)
	})

	t.Run("already closed ticket is indistinguishable from unknown", func(t *testing.T) {
		lot := newTestLot(t, 1)

		ticket, err := lot.Park(mustVehicle(t, "KA-01-HH-1234"))
		require.NoError(t, err)
		_, err = lot.Unpark(ticket.ID, okPayment{})
		require.NoError(t, err)

		_, err = lot.Unpark(ticket.ID, okPayment{})
		require.ErrorIs(t, err, models.ErrTicketNotFound)
	})

	t.Run("payment failure still releases the spot", func(t *testing.T) {
		lot := newTestLot(t, 1)

		ticket, err := lot.Park(mustVehicle(t, "KA-01-HH-1234"))
		require.NoError(t, err)

		amount, err := lot.Unpark(ticket.ID, failingPayment{})
		require.ErrorIs(t, err, models.ErrPaymentFailed)
		require.Equal(t, float64(fee.DefaultWeekdayRate), amount)

		// 车辆已离开：票据注销、车位释放
		require.Equal(t, 0, lot.ActiveTicketCount())
		require.Len(t, lot.AvailableSpots(models.VehicleTypeCar), 1)
	})
}

func TestParkingLotConcurrency(t *testing.T) {
	t.Run("n callers against k spots yield exactly k tickets", func(t *testing.T) {
		const spots, callers = 4, 32
		lot := newTestLot(t, spots)
		vehicle := mustVehicle(t, "PLATE")

		var wg sync.WaitGroup
		results := make([]*models.Ticket, callers)
		errs := make([]error, callers)

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = lot.Park(vehicle)
			}(i)
		}
		wg.Wait()

		seen := make(map[string]bool)
		var issued int
		for i := 0; i < callers; i++ {
			if errs[i] == nil {
				issued++
				require.False(t, seen[results[i].SpotID], "spot handed out twice")
				seen[results[i].SpotID] = true
			} else {
				require.ErrorIs(t, errs[i], models.ErrLotFull)
			}
		}
		require.Equal(t, spots, issued)
	})

	t.Run("concurrent unpark of one ticket has a single winner", func(t *testing.T) {
		lot := newTestLot(t, 1)

		ticket, err := lot.Park(mustVehicle(t, "KA-01-HH-1234"))
		require.NoError(t, err)

		const callers = 16
		var wg sync.WaitGroup
		errs := make([]error, callers)

		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = lot.Unpark(ticket.ID, okPayment{})
			}(i)
		}
		wg.Wait()

		var won int
		for _, err := range errs {
			if err == nil {
				won++
			} else {
				require.ErrorIs(t, err, models.ErrTicketNotFound)
			}
		}
		require.Equal(t, 1, won)
		require.Equal(t, 0, lot.ActiveTicketCount())
		require.Len(t, lot.AvailableSpots(models.VehicleTypeCar), 1)
	})

	t.Run("snapshot queries are safe during an in-flight unpark", func(t *testing.T) {
		lot := newTestLot(t, 1)

		ticket, err := lot.Park(mustVehicle(t, "KA-01-HH-1234"))
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = lot.Unpark(ticket.ID, slowPayment{})
		}()

		// 离场期间持续读取快照，-race 下不得报告数据竞争
		for {
			select {
			case <-done:
				require.Equal(t, 0, lot.ActiveTicketCount())
				return
			default:
				lot.ActiveTickets()
				lot.Ticket(ticket.ID)
			}
		}
	})

	t.Run("park snapshot is detached from later mutations", func(t *testing.T) {
		lot := newTestLot(t, 1)

		ticket, err := lot.Park(mustVehicle(t, "KA-01-HH-1234"))
		require.NoError(t, err)
		require.True(t, ticket.IsOpen())

		_, err = lot.Unpark(ticket.ID, okPayment{})
		require.NoError(t, err)

		// 调用方持有的副本不随离场变化
		require.False(t, ticket.ExitTime.Valid)
		require.False(t, ticket.Fee.Valid)
	})
}

func TestParkingLotQueries(t *testing.T) {
	t.Run("ticket snapshot is a detached copy", func(t *testing.T) {
		lot := newTestLot(t, 1)

		issued, err := lot.Park(mustVehicle(t, "KA-01-HH-1234"))
		require.NoError(t, err)

		snapshot, ok := lot.Ticket(issued.ID)
		require.True(t, ok)
		require.Equal(t, issued.ID, snapshot.ID)

		_, ok = lot.Ticket(999)
		require.False(t, ok)
	})

	t.Run("active tickets sorted by id", func(t *testing.T) {
		lot := newTestLot(t, 3)

		for i := 0; i < 3; i++ {
			_, err := lot.Park(mustVehicle(t, "PLATE"))
			require.NoError(t, err)
		}

		tickets := lot.ActiveTickets()
		require.Len(t, tickets, 3)
		for i := 1; i < len(tickets); i++ {
			require.Greater(t, tickets[i].ID, tickets[i-1].ID)
		}
	})

	t.Run("subscriber receives issue and close events", func(t *testing.T) {
		lot := newTestLot(t, 1)
		events := lot.Subscribe()

		ticket, err := lot.Park(mustVehicle(t, "KA-01-HH-1234"))
		require.NoError(t, err)
		_, err = lot.Unpark(ticket.ID, okPayment{})
		require.NoError(t, err)

		issued := <-events
		require.Equal(t, EventTicketIssued, issued.Type)
		require.Equal(t, ticket.ID, issued.TicketID)

		closed := <-events
		require.Equal(t, EventTicketClosed, closed.Type)
		require.Equal(t, float64(fee.DefaultWeekdayRate), closed.Fee)
	})
}

func TestParkingLotTopology(t *testing.T) {
	t.Run("add floor and spot at runtime", func(t *testing.T) {
		lot := newTestLot(t, 1)
		buildingID := lot.Buildings()[0].ID

		floor := models.NewFloor(2)
		require.NoError(t, lot.AddFloor(buildingID, floor))
		require.NoError(t, lot.AddSpot(floor.ID, models.NewSpot(models.VehicleTypeBike, false)))

		require.ErrorIs(t, lot.AddFloor("missing", models.NewFloor(3)), ErrBuildingNotFound)
		require.ErrorIs(t, lot.AddSpot("missing", models.NewSpot(models.VehicleTypeCar, false)), ErrFloorNotFound)

		require.Len(t, lot.AvailableSpots(models.VehicleTypeBike), 1)
	})

	t.Run("building availability snapshot", func(t *testing.T) {
		lot := newTestLot(t, 2)
		buildingID := lot.Buildings()[0].ID

		available, err := lot.BuildingAvailableSpots(buildingID, models.VehicleTypeCar)
		require.NoError(t, err)
		require.Len(t, available, 2)

		_, err = lot.BuildingAvailableSpots("missing", models.VehicleTypeCar)
		require.ErrorIs(t, err, ErrBuildingNotFound)
	})

	t.Run("gates are listed in registration order", func(t *testing.T) {
		lot := newTestLot(t, 1)
		lot.AddEntrance(models.Gate{Number: 1, Name: "north entrance"})
		lot.AddExit(models.Gate{Number: 1, Name: "south exit"})

		entrances, exits := lot.Gates()
		require.Len(t, entrances, 1)
		require.Len(t, exits, 1)
		require.Equal(t, "north entrance", entrances[0].Name)
	})
}
