// Package styles holds the palette-driven lipgloss styles shared by the UI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhath/ezcoll/internal/config"
)

var (
	textPrimary   lipgloss.Color
	textSecondary lipgloss.Color
	textFaint     lipgloss.Color

	accentColor    lipgloss.Color
	successColor   lipgloss.Color
	errorColor     lipgloss.Color
	highlightColor lipgloss.Color
	warningColor   lipgloss.Color

	bgPrimary   lipgloss.Color
	bgSecondary lipgloss.Color
	cardBg      lipgloss.Color

	chromaStyle string

	StatusBarStyle   lipgloss.Style
	PageStyle        lipgloss.Style
	ConnectionStyle  lipgloss.Style
	TitleStyle       lipgloss.Style
	SectionStyle     lipgloss.Style
	MetaStyle        lipgloss.Style
	ItemStyle        lipgloss.Style
	ItemActiveStyle  lipgloss.Style
	SelectedStyle    lipgloss.Style
	SuccessStyle     lipgloss.Style
	ErrorStyle       lipgloss.Style
	WarningStyle     lipgloss.Style
	BannerStyle      lipgloss.Style
	PopupStyle       lipgloss.Style
	PanelStyle       lipgloss.Style
	PanelActiveStyle lipgloss.Style
	KeyStyle         lipgloss.Style
	StringStyle      lipgloss.Style
	NumberStyle      lipgloss.Style
	LiteralStyle     lipgloss.Style
)

func TextPrimary() lipgloss.Color    { return textPrimary }
func TextSecondary() lipgloss.Color  { return textSecondary }
func TextFaint() lipgloss.Color      { return textFaint }
func AccentColor() lipgloss.Color    { return accentColor }
func SuccessColor() lipgloss.Color   { return successColor }
func ErrorColor() lipgloss.Color     { return errorColor }
func HighlightColor() lipgloss.Color { return highlightColor }
func WarningColor() lipgloss.Color   { return warningColor }
func BgPrimary() lipgloss.Color      { return bgPrimary }
func BgSecondary() lipgloss.Color    { return bgSecondary }
func CardBg() lipgloss.Color         { return cardBg }

// ChromaStyle names the code highlighting style matching the palette
func ChromaStyle() string { return chromaStyle }

// Init rebuilds every style from a palette. Called again on theme toggle.
func Init(p config.Palette) {
	textPrimary = lipgloss.Color(p.TextPrimary)
	textSecondary = lipgloss.Color(p.TextSecondary)
	textFaint = lipgloss.Color(p.TextFaint)

	accentColor = lipgloss.Color(p.Accent)
	successColor = lipgloss.Color(p.Success)
	errorColor = lipgloss.Color(p.Error)
	highlightColor = lipgloss.Color(p.Highlight)
	warningColor = lipgloss.Color(p.Warning)

	bgPrimary = lipgloss.Color(p.BgPrimary)
	bgSecondary = lipgloss.Color(p.BgSecondary)
	cardBg = lipgloss.Color(p.CardBg)

	chromaStyle = p.ChromaStyle
	if chromaStyle == "" {
		chromaStyle = "monokai"
	}

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(textPrimary).
		Background(bgSecondary)

	PageStyle = lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Background(successColor).
		Foreground(bgPrimary)

	ConnectionStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(cardBg).
		Foreground(textPrimary)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor)

	SectionStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(highlightColor).
		MarginTop(1)

	MetaStyle = lipgloss.NewStyle().
		Foreground(textFaint).
		Italic(true)

	ItemStyle = lipgloss.NewStyle().
		Foreground(textPrimary)

	ItemActiveStyle = lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)

	SelectedStyle = lipgloss.NewStyle().
		Foreground(bgPrimary).
		Background(highlightColor).
		Bold(true)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true)

	WarningStyle = lipgloss.NewStyle().
		Foreground(bgPrimary).
		Background(warningColor).
		Bold(true).
		Padding(0, 1)

	BannerStyle = lipgloss.NewStyle().
		Foreground(textPrimary).
		Background(errorColor).
		Padding(0, 1)

	PopupStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(highlightColor).
		Background(bgPrimary).
		Padding(1, 2)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(textFaint)

	PanelActiveStyle = PanelStyle.
		BorderForeground(accentColor)

	KeyStyle = lipgloss.NewStyle().Foreground(accentColor)
	StringStyle = lipgloss.NewStyle().Foreground(successColor)
	NumberStyle = lipgloss.NewStyle().Foreground(warningColor)
	LiteralStyle = lipgloss.NewStyle().Foreground(highlightColor)
}

func init() {
	Init(config.DefaultConfig().Palettes.Dark)
}
