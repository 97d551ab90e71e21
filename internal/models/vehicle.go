package models

import "fmt"

// VehicleType 车辆类型（封闭枚举）
type VehicleType string

const (
	VehicleTypeCar  VehicleType = "CAR"
	VehicleTypeBus  VehicleType = "BUS"
	VehicleTypeBike VehicleType = "BIKE"
)

// ParseVehicleType 校验并解析车辆类型，枚举之外的值视为调用方错误
func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(s) {
	case VehicleTypeCar, VehicleTypeBus, VehicleTypeBike:
		return VehicleType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVehicleType, s)
}

// Vehicle 车辆，创建后不可变
type Vehicle struct {
	LicensePlate string      `json:"license_plate"`
	Type         VehicleType `json:"vehicle_type"`
}

// NewVehicle 创建车辆，类型必须在枚举内
func NewVehicle(licensePlate string, vehicleType string) (Vehicle, error) {
	vt, err := ParseVehicleType(vehicleType)
	if err != nil {
		return Vehicle{}, err
	}
	return Vehicle{LicensePlate: licensePlate, Type: vt}, nil
}
