// internal/prefs/entry.go
package prefs

import "time"

// Actions recorded in the activity log
const (
	ActionDeleteDocument = "delete"
	ActionDropCollection = "drop"
	ActionImport         = "import"
	ActionExport         = "export"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var now = time.Now

// Entry is one row of the activity log
type Entry struct {
	ID           int64
	Profile      string
	Action       string
	Collection   string
	Target       string // document id or file path
	Status       string
	ErrorMessage string
	ExecutedAt   time.Time
}

// NewEntry builds an entry whose status follows err
func NewEntry(action, collection, target string, err error) *Entry {
	e := &Entry{
		Action:     action,
		Collection: collection,
		Target:     target,
		Status:     StatusSuccess,
		ExecutedAt: now(),
	}
	if err != nil {
		e.Status = StatusError
		e.ErrorMessage = err.Error()
	}
	return e
}

// TargetPreview returns a truncated target for narrow columns
func (e *Entry) TargetPreview(maxLen int) string {
	t := []rune(e.Target)
	if maxLen > 3 && len(t) > maxLen {
		return string(t[:maxLen-3]) + "..."
	}
	return e.Target
}
