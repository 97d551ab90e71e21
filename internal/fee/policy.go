package fee

import (
	"math"
	"time"

	"github.com/langchou/parkmate/internal/models"
)

// 默认费率（每小时）
const (
	DefaultWeekdayRate = 50
	DefaultWeekendRate = 70
)

// DateLayout 特殊日期的键格式
const DateLayout = "2006-01-02"

// Policy 计费策略，费率表是配置而非状态
// 同一 (entry, exit, reference) 三元组的计算结果恒定
type Policy struct {
	WeekdayRate  float64
	WeekendRate  float64
	SpecialDates map[string]float64 // "YYYY-MM-DD" -> 当日固定费率
}

// NewPolicy 创建计费策略
func NewPolicy(weekdayRate, weekendRate float64, specialDates map[string]float64) *Policy {
	if specialDates == nil {
		specialDates = make(map[string]float64)
	}
	return &Policy{
		WeekdayRate:  weekdayRate,
		WeekendRate:  weekendRate,
		SpecialDates: specialDates,
	}
}

// Default 返回默认费率的策略
func Default() *Policy {
	return NewPolicy(DefaultWeekdayRate, DefaultWeekendRate, nil)
}

// Calculate 按出入场时间与参考日期计算费用
//
// 时长按小时向上取整，最低按 1 小时计费（零时长的合法停留同样收
// 1 小时，这是明确的策略选择）。出场早于入场说明协调器逻辑有误，
// 返回 ErrInvalidInterval 而不是静默纠正。
//
// 费率按 reference（计算时刻的日历日期）选取一次：
// 特殊日期 > 周末 > 工作日。
func (p *Policy) Calculate(entryTime, exitTime, reference time.Time) (float64, error) {
	duration := exitTime.Sub(entryTime)
	if duration < 0 {
		return 0, models.ErrInvalidInterval
	}

	hours := math.Ceil(duration.Hours())
	if hours < 1 {
		hours = 1
	}

	return hours * p.rateFor(reference), nil
}

// rateFor 选取参考日期适用的小时费率
func (p *Policy) rateFor(reference time.Time) float64 {
	if rate, ok := p.SpecialDates[reference.Format(DateLayout)]; ok {
		return rate
	}
	switch reference.Weekday() {
	case time.Saturday, time.Sunday:
		return p.WeekendRate
	}
	return p.WeekdayRate
}
