package valueobjects

import (
	"github.com/shopspring/decimal"
	"github.com/urbanflow/urbanflow-backend/errors"
)

// Fare represents a non-negative, currency-agnostic monetary amount.
// Decimal arithmetic keeps per-leg surcharge sums exact.
type Fare struct {
	amount decimal.Decimal
}

// ZeroFare returns a fare of zero, the cost of an all-walking trip.
func ZeroFare() Fare {
	return Fare{amount: decimal.Zero}
}

// NewFare creates a new Fare instance with validation
func NewFare(amount decimal.Decimal) (Fare, error) {
	if amount.LessThan(decimal.Zero) {
		return Fare{}, errors.ValidationFailed(
			"invalid fare",
			"amount cannot be negative",
		)
	}

	// Fares carry at most 2 decimal places
	if amount.Exponent() < -2 {
		return Fare{}, errors.ValidationFailed(
			"invalid fare",
			"amount cannot have more than 2 decimal places",
		)
	}

	return Fare{amount: amount}, nil
}

// NewFareFromFloat creates a Fare from a float, rounding to 2 decimal places.
func NewFareFromFloat(amount float64) (Fare, error) {
	return NewFare(decimal.NewFromFloat(amount).Round(2))
}

// Add returns the sum of two fares.
func (f Fare) Add(other Fare) Fare {
	return Fare{amount: f.amount.Add(other.amount)}
}

// MulInt returns the fare multiplied by a non-negative integer count.
func (f Fare) MulInt(n int) Fare {
	if n <= 0 {
		return ZeroFare()
	}
	return Fare{amount: f.amount.Mul(decimal.NewFromInt(int64(n)))}
}

// Amount returns the fare as a float for the canonical wire shape.
func (f Fare) Amount() float64 {
	v, _ := f.amount.Float64()
	return v
}

// IsZero reports whether the fare is exactly zero.
func (f Fare) IsZero() bool {
	return f.amount.IsZero()
}

// String returns a string representation of the fare
func (f Fare) String() string {
	return f.amount.StringFixed(2)
}
