package validation

import (
	"strconv"
	"strings"
)

// ParsePeriodDays разбирает параметр периода вида "90d" или "90" в число
// дней. Пустое или некорректное значение даёт defaultDays — этот параметр
// никогда не приводит к ошибке запроса.
func ParsePeriodDays(period string, defaultDays int) int {
	period = strings.TrimSpace(period)
	if period == "" {
		return defaultDays
	}

	period = strings.TrimSuffix(period, "d")

	days, err := strconv.Atoi(period)
	if err != nil || days <= 0 {
		return defaultDays
	}
	return days
}
