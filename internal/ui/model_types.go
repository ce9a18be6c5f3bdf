// internal/ui/model_types.go
// Type definitions for the UI layer
package ui

import (
	"context"

	"github.com/nhath/ezcoll/internal/gateway"
	"github.com/nhath/ezcoll/internal/store"
)

// Gateway is everything the UI needs from the gateway client
type Gateway interface {
	store.Gateway
	Docs(ctx context.Context) (string, error)
	Watch(ctx context.Context) (<-chan gateway.WatchEvent, error)
}

// Focus is the panel receiving keys
type Focus int

const (
	FocusMain Focus = iota
	FocusSidebar
)

// HelpContext selects the help sections for the current page
type HelpContext int

const (
	HelpContextCollections HelpContext = iota
	HelpContextDocs
	HelpContextActivity
)

const (
	sidebarWidth  = 30
	statusTimeout = 4 // seconds
	watchNoteMax  = 60
)
