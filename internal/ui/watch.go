// internal/ui/watch.go
// Passive change channel: events are shown, never applied to the store
package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhath/ezcoll/internal/gateway"
	"github.com/nhath/ezcoll/internal/ui/icons"
)

func startWatch(ctx context.Context, gw Gateway) tea.Cmd {
	return func() tea.Msg {
		events, err := gw.Watch(ctx)
		return WatchStartedMsg{Events: events, Err: err}
	}
}

// waitForWatch re-arms after every event
func waitForWatch(events <-chan gateway.WatchEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return WatchClosedMsg{}
		}
		return WatchEventMsg{Event: ev}
	}
}

func watchNote(ev gateway.WatchEvent) string {
	note := fmt.Sprintf("%s %s %s", icons.EventIcon(ev.Event), ev.Model, ev.Event)
	if n := len(ev.Data); n > 0 {
		note += fmt.Sprintf(" (%d)", n)
	}
	return limitString(note, watchNoteMax)
}
