package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/langchou/parkmate/internal/fee"
)

type Config struct {
	// Server
	ServerPort string
	Debug      bool

	// 计费
	WeekdayRate  float64
	WeekendRate  float64
	SpecialDates map[string]float64

	// 分配策略名称: first_fit / nearest_floor / ev_preferring
	Strategy string

	// 车场拓扑文件路径（JSON，可选）
	LayoutFile string
}

func Load() (*Config, error) {
	// 尝试加载 .env 文件（可选）
	_ = godotenv.Load()

	specialDates, err := parseSpecialDates(getEnv("SPECIAL_DATE_RATES", "2025-12-25=150"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:   getEnv("PORT", "4000"),
		Debug:        getEnvBool("DEBUG", false),
		WeekdayRate:  getEnvFloat("WEEKDAY_RATE", fee.DefaultWeekdayRate),
		WeekendRate:  getEnvFloat("WEEKEND_RATE", fee.DefaultWeekendRate),
		SpecialDates: specialDates,
		Strategy:     getEnv("ALLOCATION_STRATEGY", "first_fit"),
		LayoutFile:   getEnv("LAYOUT_FILE", "layout.json"),
	}

	return cfg, nil
}

// parseSpecialDates 解析 "2025-12-25=150,2026-01-01=200" 形式的费率表
func parseSpecialDates(raw string) (map[string]float64, error) {
	dates := make(map[string]float64)
	if raw == "" {
		return dates, nil
	}

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		date, rateStr, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid special date entry: %q", entry)
		}
		if _, err := time.Parse(fee.DateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid special date %q: %w", date, err)
		}
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid special rate %q: %w", rateStr, err)
		}
		dates[date] = rate
	}
	return dates, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}
