package provider

import (
	"context"
	"fmt"

	"github.com/law-makers/reviews/pkg/models"
)

// CheckHealth exercises a provider's declared test URLs and reports one
// result per URL, in list order. When url is non-empty only that URL is
// checked. A provider with no test URLs yields a single unhealthy result.
//
// Health checks never fail with an error: every failure path is folded into
// the returned results.
func CheckHealth(ctx context.Context, p Provider, url string) []models.HealthCheckResult {
	if url != "" {
		return []models.HealthCheckResult{healthForURL(ctx, p, url)}
	}

	testURLs := p.Descriptor().TestURLs
	if len(testURLs) == 0 {
		return []models.HealthCheckResult{{
			IsHealthy: false,
			Message:   "No test URLs configured",
		}}
	}

	results := make([]models.HealthCheckResult, 0, len(testURLs))
	for _, u := range testURLs {
		results = append(results, healthForURL(ctx, p, u))
	}
	return results
}

func healthForURL(ctx context.Context, p Provider, url string) models.HealthCheckResult {
	list, err := p.GetReviews(ctx, url)
	if err != nil {
		return models.HealthCheckResult{
			IsHealthy: false,
			Message:   fmt.Sprintf("Error fetching reviews: %v", err),
			URL:       url,
		}
	}

	if err := CheckReviewsCount(list.Reviews); err != nil {
		return models.HealthCheckResult{
			IsHealthy: false,
			Message:   "No reviews found",
			URL:       url,
		}
	}

	for _, review := range list.Reviews {
		if err := CheckReviewFields(review); err != nil {
			return models.HealthCheckResult{
				IsHealthy: false,
				Message:   "Review validation failed",
				URL:       url,
			}
		}
	}

	return models.HealthCheckResult{
		IsHealthy:    true,
		Message:      "Successfully fetched reviews",
		URL:          url,
		ReviewsCount: len(list.Reviews),
	}
}
