package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	tick            = decimal.New(1, -1)
	nonPositiveBase = decimal.New(-2, -1)
)

// Band bounds every player price.
type Band struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func DefaultBand() Band {
	return Band{Min: decimal.NewFromInt(4), Max: decimal.NewFromInt(12)}
}

// NewBand builds a band from float bounds.
func NewBand(min, max float64) (Band, error) {
	b := Band{Min: decimal.NewFromFloat(min), Max: decimal.NewFromFloat(max)}
	if !b.Min.IsPositive() || b.Max.LessThan(b.Min) {
		return Band{}, fmt.Errorf("invalid price band: min=%v max=%v", min, max)
	}
	return b, nil
}

func (b Band) Clamp(v decimal.Decimal) decimal.Decimal {
	if v.LessThan(b.Min) {
		return b.Min
	}
	if v.GreaterThan(b.Max) {
		return b.Max
	}
	return v
}

// Delta is the raw price movement earned by a round's points.
func Delta(points float64) decimal.Decimal {
	if points > 0 {
		return tick.Mul(decimal.NewFromFloat(math.Floor(points / 3)))
	}
	steps := decimal.NewFromFloat(math.Floor(math.Abs(points) / 2))
	return nonPositiveBase.Sub(tick.Mul(steps))
}

// Adjust applies the round delta to price, clamps it into the band and rounds
// half up to one decimal. actual is the movement after clamping.
func Adjust(price, points float64, band Band) (newPrice, actual decimal.Decimal) {
	current := RoundPrice(decimal.NewFromFloat(price))
	newPrice = RoundPrice(band.Clamp(current.Add(Delta(points))))
	return newPrice, newPrice.Sub(current)
}

// RoundPrice rounds to one decimal place, half away from zero.
func RoundPrice(v decimal.Decimal) decimal.Decimal {
	return v.Round(1)
}
