package provider

import "github.com/law-makers/reviews/pkg/models"

// CheckReviewFields verifies the required fields of a single review.
// Optional string fields are type-safe by construction in Go; representations
// loaded from fixtures are type-checked at decode time instead.
func CheckReviewFields(review models.Review) error {
	if review.CreatedAt.IsZero() {
		return NewError(KindValidation, "review created_at is required", nil)
	}
	if review.Rating == nil {
		return NewError(KindValidation, "review rating is required", nil)
	}
	return nil
}

// CheckReviewsCount verifies that a fetched collection is non-empty.
func CheckReviewsCount(reviews []models.Review) error {
	if len(reviews) == 0 {
		return NewError(KindValidation, "no reviews found", nil)
	}
	return nil
}

// ValidateReviews runs the full shape check used by health checks and by the
// recording harness before a fixture is persisted. Returns ok plus a short
// reason when validation fails.
func ValidateReviews(reviews []models.Review) (bool, string) {
	if err := CheckReviewsCount(reviews); err != nil {
		return false, "No reviews found"
	}
	for _, review := range reviews {
		if err := CheckReviewFields(review); err != nil {
			return false, "Review validation failed"
		}
	}
	return true, ""
}
