package output

import (
	"fmt"
	"io"
	"time"

	"github.com/law-makers/reviews/pkg/models"
)

// WriteMarkdown writes the review collection to w as a Markdown document,
// one section per review. Review text is already Markdown, so it is
// embedded verbatim.
func WriteMarkdown(w io.Writer, result *models.ProviderReviewList, url string) error {
	if _, err := fmt.Fprintf(w, "# Reviews from %s\n\nSource: %s\n", result.Provider, url); err != nil {
		return err
	}

	for i, review := range result.Reviews {
		fmt.Fprintf(w, "\n## Review %d\n\n", i+1)
		fmt.Fprintf(w, "- Date: %s\n", review.CreatedAt.Format(time.RFC3339))
		if review.Rating != nil {
			fmt.Fprintf(w, "- Rating: %g\n", *review.Rating)
		}
		if review.Summary != nil {
			fmt.Fprintf(w, "- Summary: %s\n", *review.Summary)
		}
		if review.Text != nil {
			fmt.Fprintf(w, "\n%s\n", *review.Text)
		}
		if review.Pros != nil {
			fmt.Fprintf(w, "\n**Pros:** %s\n", *review.Pros)
		}
		if review.Cons != nil {
			fmt.Fprintf(w, "\n**Cons:** %s\n", *review.Cons)
		}
	}
	return nil
}
