package services

import (
	"github.com/urbanflow/urbanflow-backend/pkg/valueobjects"
)

// FareEstimator estimates the monetary cost of a trip from its boarding count.
// Real fare tables are out of scope; implementations stay pluggable so a
// deployment can swap in actual fare data.
type FareEstimator interface {
	Estimate(nonWalkLegs int) valueobjects.Fare
}

// FlatFareEstimator charges a fixed surcharge per non-walk leg.
// An all-walking trip costs zero.
type FlatFareEstimator struct {
	perLeg valueobjects.Fare
}

var _ FareEstimator = (*FlatFareEstimator)(nil)

// NewFlatFareEstimator creates a flat estimator from the configured surcharge.
func NewFlatFareEstimator(perLegSurcharge float64) (*FlatFareEstimator, error) {
	fare, err := valueobjects.NewFareFromFloat(perLegSurcharge)
	if err != nil {
		return nil, err
	}
	return &FlatFareEstimator{perLeg: fare}, nil
}

func (e *FlatFareEstimator) Estimate(nonWalkLegs int) valueobjects.Fare {
	return e.perLeg.MulInt(nonWalkLegs)
}
