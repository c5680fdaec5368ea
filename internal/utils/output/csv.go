package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/law-makers/reviews/pkg/models"
)

// WriteCSV writes the review collection to w as CSV, one row per review.
func WriteCSV(w io.Writer, result *models.ProviderReviewList, url string) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"provider", "url", "created_at", "rating", "text", "pros", "cons", "summary"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, review := range result.Reviews {
		row := []string{
			result.Provider,
			url,
			review.CreatedAt.Format(time.RFC3339),
			ratingField(review.Rating),
			deref(review.Text),
			deref(review.Pros),
			deref(review.Cons),
			deref(review.Summary),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func ratingField(rating *float64) string {
	if rating == nil {
		return ""
	}
	return strconv.FormatFloat(*rating, 'f', -1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
