// Package output renders scraped review collections in the formats the CLI
// can emit.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/law-makers/reviews/pkg/models"
)

// Write renders the review collection to w in the named format. The empty
// string selects JSON.
func Write(w io.Writer, format string, result *models.ProviderReviewList, url string) error {
	switch strings.ToLower(format) {
	case "", "json":
		return WriteJSON(w, result, url)
	case "csv":
		return WriteCSV(w, result, url)
	case "markdown", "md":
		return WriteMarkdown(w, result, url)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
