// internal/ui/model_messages.go
// Message types owned by the root model. Store and component messages are
// declared in their own packages.
package ui

import "github.com/nhath/ezcoll/internal/gateway"

// ClipboardCopiedMsg is sent when a document was yanked
type ClipboardCopiedMsg struct {
	ID  string
	Err error
}

// WatchStartedMsg carries the change channel once subscribed
type WatchStartedMsg struct {
	Events <-chan gateway.WatchEvent
	Err    error
}

// WatchEventMsg is one change notification
type WatchEventMsg struct {
	Event gateway.WatchEvent
}

// WatchClosedMsg is sent when the change channel ends
type WatchClosedMsg struct{}

// clearStatusMsg expires the status toast with the matching id
type clearStatusMsg struct {
	ID int
}
