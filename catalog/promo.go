package catalog

import (
	"strings"
	"time"
)

// DiscountType is how a promo applies its value: a percentage off, a
// fixed rupiah amount off, or a bonus item/service.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
	DiscountBonus      DiscountType = "bonus"
)

// ParseDiscountType validates a raw discount type string.
func ParseDiscountType(raw string) (DiscountType, error) {
	switch DiscountType(strings.ToLower(strings.TrimSpace(raw))) {
	case DiscountPercentage:
		return DiscountPercentage, nil
	case DiscountFixed:
		return DiscountFixed, nil
	case DiscountBonus:
		return DiscountBonus, nil
	default:
		return "", ErrDiscountTypeUnknown
	}
}

// PromoEligibility restricts who may claim a promo. Zero values mean no
// restriction on that axis; AllUsers overrides the rest.
type PromoEligibility struct {
	NewUser         bool      `json:"isNewUser,omitempty"`
	MinServiceCount int       `json:"minServiceCount,omitempty"`
	MinInviteCount  int       `json:"minInviteCount,omitempty"`
	AllUsers        bool      `json:"allUsers,omitempty"`
	DateRestriction time.Time `json:"dateRestriction,omitzero"`
}

// Promo is a marketing promotion customers can claim by code.
type Promo struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Image         string           `json:"image"`
	DiscountType  DiscountType     `json:"discountType"`
	DiscountValue int64            `json:"discountValue"`
	Code          string           `json:"code"`
	Conditions    []string         `json:"conditions"`
	ExpiresAt     time.Time        `json:"expiryDate"`
	Active        bool             `json:"isActive"`
	Eligibility   PromoEligibility `json:"eligibility"`
	ClaimedBy     []string         `json:"claimedBy"`
}

// Validate reports whether the promo satisfies the structural invariants:
// identifiers present, a known discount type, a positive value, and
// percentages capped at 100.
func (p *Promo) Validate() error {
	if p == nil {
		return ErrPromoInvalid
	}
	if p.ID == "" || p.Code == "" || p.ExpiresAt.IsZero() {
		return ErrPromoInvalid
	}
	if _, err := ParseDiscountType(string(p.DiscountType)); err != nil {
		return err
	}
	if p.DiscountValue <= 0 {
		return ErrPromoInvalid
	}
	if p.DiscountType == DiscountPercentage && p.DiscountValue > 100 {
		return ErrPromoInvalid
	}
	return nil
}

// Expired reports whether the promo's expiry has passed at now.
func (p *Promo) Expired(now time.Time) bool {
	return !p.ExpiresAt.After(now)
}

// Claimed reports whether userID has already claimed the promo.
func (p *Promo) Claimed(userID string) bool {
	for _, id := range p.ClaimedBy {
		if id == userID {
			return true
		}
	}
	return false
}
