package icons

const (
	IconSuccess   = "✓"
	IconError     = "⚠"
	IconSelect    = "▸"
	IconBullet    = "•"
	IconSeparator = "  •  "
	IconBack      = "◀"
	IconForward   = "▶"
	IconWatch     = "⟳"
	IconSSH       = "⇄"
)

// EventIcon marks a change channel event in the status bar
func EventIcon(event string) string {
	switch event {
	case "insert":
		return "+"
	case "update":
		return "~"
	case "delete":
		return "-"
	default:
		return IconWatch
	}
}
