package output

import (
	"encoding/json"
	"io"

	"github.com/law-makers/reviews/pkg/models"
)

// WriteJSON writes an indented JSON export of the review collection to w.
func WriteJSON(w io.Writer, result *models.ProviderReviewList, url string) error {
	payload := map[string]any{
		"provider": result.Provider,
		"url":      url,
		"reviews":  representations(result.Reviews),
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func representations(reviews []models.Review) []map[string]any {
	reps := make([]map[string]any, 0, len(reviews))
	for _, review := range reviews {
		reps = append(reps, review.ToRepresentation())
	}
	return reps
}
