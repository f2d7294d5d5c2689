package order

import (
	"time"

	"bazaar-be/internal/rating"
	"bazaar-be/internal/utils"

	"github.com/google/uuid"
)

// Rate records the vendor's rating once the order is delivered.
// A rated order is never rated again. The caller's right to rate is checked
// before the score and review themselves.
func (o *Order) Rate(vendorID uuid.UUID, score int, review string, now time.Time) error {
	if o.VendorID != vendorID {
		return ErrNotOrderVendor
	}
	if o.Status != StatusDelivered {
		return ErrNotDelivered
	}
	if o.IsRated {
		return ErrAlreadyRated
	}
	if err := rating.Validate(score); err != nil {
		return err
	}
	if utils.TooLong(review, rating.MaxReviewLength) {
		return ErrReviewTooLong
	}

	o.Rating = &score
	o.Review = review
	o.IsRated = true
	o.UpdatedAt = now
	return nil
}

// VisibleTo reports whether the user is a party to the order.
func (o *Order) VisibleTo(userID uuid.UUID) bool {
	return userID != uuid.Nil && (o.VendorID == userID || o.SupplierID == userID)
}
