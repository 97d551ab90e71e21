package service

import (
	"go.uber.org/zap"

	"github.com/langchou/parkmate/internal/models"
)

// 拓扑按注册顺序追加且从不重排或删除，注册顺序就是分配扫描顺序，
// 运行时新增的楼宇/楼层/车位排在扫描序列尾部。

// AddBuilding 注册停车楼
func (s *ParkingLot) AddBuilding(building *models.Building) {
	s.mu.Lock()
	s.buildings = append(s.buildings, building)
	s.buildingIndex[building.ID] = building
	for _, floor := range building.Floors {
		s.floorIndex[floor.ID] = floor
		for _, spot := range floor.Spots {
			s.spotIndex[spot.ID] = spot
		}
	}
	s.mu.Unlock()

	s.logger.Info("Building registered",
		zap.String("building_id", building.ID),
		zap.String("name", building.Name))
}

// AddFloor 向指定停车楼追加楼层
func (s *ParkingLot) AddFloor(buildingID string, floor *models.Floor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	building, ok := s.buildingIndex[buildingID]
	if !ok {
		return ErrBuildingNotFound
	}
	building.AddFloor(floor)
	s.floorIndex[floor.ID] = floor
	for _, spot := range floor.Spots {
		s.spotIndex[spot.ID] = spot
	}
	return nil
}

// AddSpot 向指定楼层追加车位
func (s *ParkingLot) AddSpot(floorID string, spot *models.Spot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	floor, ok := s.floorIndex[floorID]
	if !ok {
		return ErrFloorNotFound
	}
	floor.AddSpot(spot)
	s.spotIndex[spot.ID] = spot
	return nil
}

// AddEntrance 登记入口
func (s *ParkingLot) AddEntrance(gate models.Gate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entrances = append(s.entrances, gate)
}

// AddExit 登记出口
func (s *ParkingLot) AddExit(gate models.Gate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exits = append(s.exits, gate)
}

// Gates 返回出入口列表
func (s *ParkingLot) Gates() (entrances, exits []models.Gate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Gate(nil), s.entrances...), append([]models.Gate(nil), s.exits...)
}

// Buildings 返回整棵拓扑树的深拷贝快照，可在锁外安全序列化
func (s *ParkingLot) Buildings() []*models.Building {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]*models.Building, 0, len(s.buildings))
	for _, building := range s.buildings {
		b := &models.Building{ID: building.ID, Name: building.Name}
		for _, floor := range building.Floors {
			f := &models.Floor{ID: floor.ID, Number: floor.Number}
			for _, spot := range floor.Spots {
				sp := *spot
				f.Spots = append(f.Spots, &sp)
			}
			b.Floors = append(b.Floors, f)
		}
		snapshot = append(snapshot, b)
	}
	return snapshot
}

// AvailableSpots 全场可用车位快照，按注册顺序
func (s *ParkingLot) AvailableSpots(vehicleType models.VehicleType) []models.Spot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var available []models.Spot
	for _, building := range s.buildings {
		for _, spot := range building.AvailableSpots(vehicleType) {
			available = append(available, *spot)
		}
	}
	return available
}

// BuildingAvailableSpots 指定停车楼的可用车位快照
func (s *ParkingLot) BuildingAvailableSpots(buildingID string, vehicleType models.VehicleType) ([]models.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	building, ok := s.buildingIndex[buildingID]
	if !ok {
		return nil, ErrBuildingNotFound
	}

	var available []models.Spot
	for _, spot := range building.AvailableSpots(vehicleType) {
		available = append(available, *spot)
	}
	return available, nil
}
