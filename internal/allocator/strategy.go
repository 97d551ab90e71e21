package allocator

import (
	"sort"

	"github.com/langchou/parkmate/internal/models"
)

// Strategy 车位分配策略
// 返回 nil 表示没有可用车位（车场已满），是正常结果而非错误
type Strategy interface {
	Select(buildings []*models.Building, vehicleType models.VehicleType) *models.Spot
}

// FirstFit 首次适配：按楼宇注册顺序 -> 楼层注册顺序 -> 车位注册顺序
// 扫描，返回第一个空闲且类型匹配的车位
type FirstFit struct{}

// Select 实现 Strategy
func (FirstFit) Select(buildings []*models.Building, vehicleType models.VehicleType) *models.Spot {
	for _, building := range buildings {
		spots := building.AvailableSpots(vehicleType)
		if len(spots) > 0 {
			return spots[0]
		}
	}
	return nil
}

// NearestFloorFirst 低楼层优先：跨楼宇按楼层号升序扫描，
// 同楼层号按注册顺序决胜
type NearestFloorFirst struct{}

// Select 实现 Strategy
func (NearestFloorFirst) Select(buildings []*models.Building, vehicleType models.VehicleType) *models.Spot {
	var floors []*models.Floor
	for _, building := range buildings {
		floors = append(floors, building.Floors...)
	}
	// 稳定排序保留注册顺序作为决胜规则
	sort.SliceStable(floors, func(i, j int) bool {
		return floors[i].Number < floors[j].Number
	})

	for _, floor := range floors {
		spots := floor.AvailableSpots(vehicleType)
		if len(spots) > 0 {
			return spots[0]
		}
	}
	return nil
}

// EVPreferring 充电桩优先：优先返回支持充电的车位，
// 没有再退回首次适配
type EVPreferring struct{}

// Select 实现 Strategy
func (EVPreferring) Select(buildings []*models.Building, vehicleType models.VehicleType) *models.Spot {
	var fallback *models.Spot
	for _, building := range buildings {
		for _, spot := range building.AvailableSpots(vehicleType) {
			if spot.EVSupported {
				return spot
			}
			if fallback == nil {
				fallback = spot
			}
		}
	}
	return fallback
}
