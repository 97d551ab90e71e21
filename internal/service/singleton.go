package service

import (
	"sync"

	"go.uber.org/zap"

	"github.com/langchou/parkmate/internal/allocator"
	"github.com/langchou/parkmate/internal/clock"
	"github.com/langchou/parkmate/internal/fee"
)

var (
	defaultLot  *ParkingLot
	defaultOnce sync.Once
)

// Default 返回进程级共享的车场实例，首次访问时惰性初始化
//
// 常规用法是在进程启动时用 NewParkingLot 构造一次并显式传递，
// 测试可以构造互相独立的实例；Default 只服务于不方便传递依赖的
// 简单调用方。
func Default() *ParkingLot {
	defaultOnce.Do(func() {
		defaultLot = NewParkingLot(zap.NewNop(), clock.NewSystem(), allocator.FirstFit{}, fee.Default())
	})
	return defaultLot
}
