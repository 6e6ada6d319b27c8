package worktime

import (
	"time"

	"github.com/shopspring/decimal"
)

var secondsPerHour = decimal.NewFromInt(3600)

func hoursOf(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Second)).Div(secondsPerHour)
}

// tenths rounds an hour value to one decimal place.
func tenths(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
