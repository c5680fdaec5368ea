// Package providers links the bundled providers into the binary. Importing
// it triggers their builtin registration.
package providers

import (
	_ "github.com/law-makers/reviews/internal/provider/providers/dummy"
	_ "github.com/law-makers/reviews/internal/provider/providers/jsonfs"
)
