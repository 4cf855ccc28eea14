package catalog

import "errors"

var (
	// ErrKindUnknown reports a service-request kind outside the two the
	// platform accepts.
	ErrKindUnknown = errors.New("catalog: unknown service request kind")
	// ErrStatusUnknown reports a service-request status outside the
	// lifecycle set.
	ErrStatusUnknown = errors.New("catalog: unknown service request status")
	// ErrVehicleCategoryUnknown reports a vehicle category other than car
	// or motorcycle.
	ErrVehicleCategoryUnknown = errors.New("catalog: unknown vehicle category")
	// ErrDiscountTypeUnknown reports a promo discount type outside
	// percentage, fixed, or bonus.
	ErrDiscountTypeUnknown = errors.New("catalog: unknown discount type")
	// ErrRequestInvalid reports a service request that fails structural
	// validation.
	ErrRequestInvalid = errors.New("catalog: invalid service request")
	// ErrEstimationInvalid reports a price estimation whose components do
	// not reconcile.
	ErrEstimationInvalid = errors.New("catalog: invalid price estimation")
	// ErrPromoInvalid reports a promo that fails structural validation.
	ErrPromoInvalid = errors.New("catalog: invalid promo")
)
