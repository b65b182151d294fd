package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Message type constants for consistent UI messaging
const (
	MessageTypeError   = "error"
	MessageTypeSuccess = "success"
	MessageTypeInfo    = "info"
)

// CurrencySymbol prefixes every amount shown in the console
const CurrencySymbol = "R"

var (
	// Backgrounds
	bgVoid      = lipgloss.Color("#0a0a0f")
	bgPrimary   = lipgloss.Color("#0d1117")
	bgSecondary = lipgloss.Color("#161b22")
	bgElevated  = lipgloss.Color("#1f2937")

	// Accents
	neonCyan    = lipgloss.Color("#00ffff")
	neonMagenta = lipgloss.Color("#ff00ff")
	neonGreen   = lipgloss.Color("#39ff14")
	neonOrange  = lipgloss.Color("#ff6600")
	neonRed     = lipgloss.Color("#ff0055")
	neonBlue    = lipgloss.Color("#00d4ff")
	neonYellow  = lipgloss.Color("#ffff00")

	// Text
	textPrimary   = lipgloss.Color("#f0f6fc")
	textSecondary = lipgloss.Color("#c9d1d9")
	textMuted     = lipgloss.Color("#8b949e")
	textBright    = lipgloss.Color("#ffffff")

	// HeaderHeight is the header height in terminal rows
	HeaderHeight = 3
	// FooterHeight is the footer height in terminal rows
	FooterHeight = 2

	HeaderStyle = lipgloss.NewStyle().
			Background(bgSecondary).
			Foreground(textPrimary).
			Bold(true).
			Padding(0, 2).
			Height(HeaderHeight).
			BorderBottom(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderBottomForeground(neonCyan)

	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(neonCyan).
				Bold(true)

	BreadcrumbStyle = lipgloss.NewStyle().
			Foreground(textMuted)

	BreadcrumbActiveStyle = lipgloss.NewStyle().
				Foreground(neonCyan).
				Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Background(bgVoid).
			Foreground(textSecondary).
			Padding(0, 2).
			Height(FooterHeight).
			BorderTop(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderTopForeground(neonCyan)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(neonGreen).
			Bold(true)

	FooterLabelStyle = lipgloss.NewStyle().
				Foreground(textBright)

	FooterHelpStyle = lipgloss.NewStyle().
			Foreground(neonCyan)

	ContentStyle = lipgloss.NewStyle().
			Background(bgPrimary).
			Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(neonCyan).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(neonMagenta).
			MarginBottom(1)

	MenuItemStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(textSecondary)

	SelectedMenuItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(bgElevated).
				Foreground(neonCyan).
				Bold(true)

	CursorStyle = lipgloss.NewStyle().
			Foreground(neonMagenta).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(textMuted).
			Width(22)

	ValueStyle = lipgloss.NewStyle().
			Foreground(textPrimary)

	MoneyStyle = lipgloss.NewStyle().
			Foreground(neonYellow).
			Bold(true)

	// Status styles
	StatusActiveStyle   = lipgloss.NewStyle().Foreground(neonGreen).Bold(true)
	StatusPendingStyle  = lipgloss.NewStyle().Foreground(neonOrange).Bold(true)
	StatusInactiveStyle = lipgloss.NewStyle().Foreground(neonRed).Bold(true)
	StatusInfoStyle     = lipgloss.NewStyle().Foreground(neonBlue).Bold(true)

	// Toast messages
	ErrorStyle   = lipgloss.NewStyle().Foreground(neonRed).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(neonGreen).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(neonBlue)
)

// FormatStatus returns a styled, upper-cased request status
func FormatStatus(status string) string {
	normalized := strings.ToUpper(status)
	switch normalized {
	case "COMPLETED":
		return StatusActiveStyle.Render(normalized)
	case "PENDING":
		return StatusPendingStyle.Render(normalized)
	case "CANCELLED":
		return StatusInactiveStyle.Render(normalized)
	default:
		return StatusInfoStyle.Render(normalized)
	}
}

// FormatBool returns a styled boolean
func FormatBool(b bool) string {
	if b {
		return StatusActiveStyle.Render("Yes")
	}
	return StatusInactiveStyle.Render("No")
}

// FormatMoney renders an amount with two decimals and the currency symbol
func FormatMoney(d decimal.Decimal) string {
	return MoneyStyle.Render(CurrencySymbol + " " + d.StringFixed(2))
}

// FormatHelpItem renders a help item as "Key Label"
func FormatHelpItem(key, label string) string {
	return FooterKeyStyle.Render(key) + " " + FooterLabelStyle.Render(label)
}

// MessageStyle picks the toast style for a message type
func MessageStyle(kind string) lipgloss.Style {
	switch kind {
	case MessageTypeError:
		return ErrorStyle
	case MessageTypeSuccess:
		return SuccessStyle
	default:
		return InfoStyle
	}
}
