// Package cli provides the command-line interface for the reviews application.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/law-makers/reviews/internal/app"
)

// ctxKey is used for storing the app in cobra command contexts
type ctxKey struct{}

// SetApp stores the Application in the command's context
func SetApp(cmd *cobra.Command, a *app.Application) {
	globalApp = a
	if cmd == nil {
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, ctxKey{}, a))
}

// GetAppFromCmd retrieves the Application stored for a command, falling
// back to the last application registered anywhere.
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	if cmd != nil {
		if ctx := cmd.Context(); ctx != nil {
			if a, ok := ctx.Value(ctxKey{}).(*app.Application); ok && a != nil {
				return a
			}
		}
	}
	return globalApp
}

// Global reference - temporary until full context passing is implemented
var globalApp *app.Application
