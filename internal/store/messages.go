package store

import "github.com/nhath/ezcoll/internal/gateway"

// Messages produced by store commands. Gen ties a result to the store
// generation that issued it; results from before a Reset are dropped.

type NamesLoadedMsg struct {
	Gen   int
	Names []string
	Err   error
}

// CollectionResult is one settled fetch of the load-all join
type CollectionResult struct {
	Name       string
	Collection gateway.Collection
	Err        error
}

type CollectionsLoadedMsg struct {
	Gen     int
	Results []CollectionResult
}

type CollectionLoadedMsg struct {
	Gen int
	CollectionResult
}

type DocumentDeletedMsg struct {
	Gen        int
	Collection string
	ID         string
	Err        error
}

type CollectionDroppedMsg struct {
	Gen        int
	Collection string
	Err        error
}

type ImportFinishedMsg struct {
	Gen        int
	Collection string
	Path       string
	Err        error
}

type ExportFinishedMsg struct {
	Gen        int
	Collection string
	Path       string
	Err        error
}

// ReloadRequestedMsg asks the root model for a full reload
type ReloadRequestedMsg struct{}
