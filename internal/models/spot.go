package models

import "github.com/google/uuid"

// Spot 车位，最小可分配单元
// 占用不变量：Occupied == (VehiclePlate != "")
// 并发安全由持有整棵树的协调器负责，Spot 本身不加锁
type Spot struct {
	ID           string      `json:"id"`
	VehicleType  VehicleType `json:"vehicle_type_supported"`
	EVSupported  bool        `json:"ev_supported"`
	Occupied     bool        `json:"occupied"`
	VehiclePlate string      `json:"vehicle_plate,omitempty"` // 非拥有引用，仅在占用期间有效
}

// NewSpot 创建车位
func NewSpot(vehicleType VehicleType, evSupported bool) *Spot {
	return &Spot{
		ID:          uuid.NewString(),
		VehicleType: vehicleType,
		EVSupported: evSupported,
	}
}

// IsAvailableFor 车位空闲且支持该车辆类型
func (s *Spot) IsAvailableFor(vehicleType VehicleType) bool {
	return !s.Occupied && s.VehicleType == vehicleType
}

// Assign 将车辆分配到本车位，重复分配视为调用方错误
func (s *Spot) Assign(vehicle Vehicle) error {
	if s.Occupied {
		return ErrSpotOccupied
	}
	s.Occupied = true
	s.VehiclePlate = vehicle.LicensePlate
	return nil
}

// Release 释放车位，释放空车位视为调用方错误
func (s *Spot) Release() error {
	if !s.Occupied {
		return ErrSpotNotOccupied
	}
	s.Occupied = false
	s.VehiclePlate = ""
	return nil
}

// Floor 楼层，按注册顺序持有车位
type Floor struct {
	ID     string  `json:"id"`
	Number int     `json:"floor_num"`
	Spots  []*Spot `json:"spots"`
}

// NewFloor 创建楼层
func NewFloor(number int) *Floor {
	return &Floor{
		ID:     uuid.NewString(),
		Number: number,
	}
}

// AddSpot 追加车位，注册顺序即分配扫描顺序
func (f *Floor) AddSpot(spot *Spot) {
	f.Spots = append(f.Spots, spot)
}

// AvailableSpots 按注册顺序返回空闲且类型匹配的车位，纯查询
func (f *Floor) AvailableSpots(vehicleType VehicleType) []*Spot {
	var available []*Spot
	for _, spot := range f.Spots {
		if spot.IsAvailableFor(vehicleType) {
			available = append(available, spot)
		}
	}
	return available
}

// Building 停车楼，按注册顺序持有楼层
type Building struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Floors []*Floor `json:"floors"`
}

// NewBuilding 创建停车楼
func NewBuilding(name string) *Building {
	return &Building{
		ID:   uuid.NewString(),
		Name: name,
	}
}

// AddFloor 追加楼层
func (b *Building) AddFloor(floor *Floor) {
	b.Floors = append(b.Floors, floor)
}

// AvailableSpots 按楼层注册顺序拼接各楼层的可用车位
func (b *Building) AvailableSpots(vehicleType VehicleType) []*Spot {
	var available []*Spot
	for _, floor := range b.Floors {
		available = append(available, floor.AvailableSpots(vehicleType)...)
	}
	return available
}
