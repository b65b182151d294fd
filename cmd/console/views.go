package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zlovtnik/homeswift/cmd/console/ui"
	"github.com/zlovtnik/homeswift/internal/models"
)

const fmtDateTimeDisplay = "2006-01-02 15:04"

// View renders header, content and footer
func (m Model) View() string {
	width := m.width
	if width < 40 {
		width = 80
	}
	height := m.height - ui.HeaderHeight - ui.FooterHeight - 2
	if height < 5 {
		height = 5
	}

	var content string
	switch m.view {
	case viewDetail:
		content = m.renderDetail()
	case viewStats:
		content = m.renderStats()
	default:
		content = m.renderList()
	}
	if m.message != "" {
		content += "\n" + ui.MessageStyle(m.messageType).Render(m.message)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(width),
		ui.ContentStyle.Width(width).Height(height).Render(content),
		m.renderFooter(width),
	)
}

func (m Model) breadcrumb() []string {
	crumbs := []string{"Requests"}
	switch m.view {
	case viewDetail:
		if m.current != nil {
			crumbs = append(crumbs, fmt.Sprintf("#%d", m.current.ID))
		}
	case viewStats:
		crumbs = []string{"Stats"}
	}
	return crumbs
}

func (m Model) renderHeader(width int) string {
	logo := ui.HeaderTitleStyle.Render("HomeSwift Admin")

	crumbs := m.breadcrumb()
	parts := make([]string, len(crumbs))
	for i, c := range crumbs {
		if i == len(crumbs)-1 {
			parts[i] = ui.BreadcrumbActiveStyle.Render(c)
		} else {
			parts[i] = ui.BreadcrumbStyle.Render(c)
		}
	}
	left := logo + "  " + strings.Join(parts, ui.BreadcrumbStyle.Render(" > "))

	right := ui.FooterLabelStyle.Render(m.user)
	if m.loading {
		right = ui.StatusPendingStyle.Render("loading") + " " + right
	}

	spacing := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if spacing < 1 {
		spacing = 1
	}
	return ui.HeaderStyle.Width(width).Render(left + strings.Repeat(" ", spacing) + right)
}

func (m Model) renderFooter(width int) string {
	sep := ui.FooterHelpStyle.Render(" | ")
	var items []string
	switch {
	case m.searching:
		items = []string{ui.FormatHelpItem("Enter", "Search"), ui.FormatHelpItem("Esc", "Cancel")}
	case m.view == viewDetail:
		items = []string{
			ui.FormatHelpItem("c", "Confirm"),
			ui.FormatHelpItem("s", "Start"),
			ui.FormatHelpItem("d", "Done"),
			ui.FormatHelpItem("x", "Cancel"),
			ui.FormatHelpItem("Esc", "Back"),
		}
	case m.view == viewStats:
		items = []string{ui.FormatHelpItem("r", "Refresh"), ui.FormatHelpItem("Esc", "Back")}
	default:
		items = []string{
			ui.FormatHelpItem("Tab", "Filter"),
			ui.FormatHelpItem("/", "Search"),
			ui.FormatHelpItem("Enter", "Open"),
			ui.FormatHelpItem("m", "Reminders"),
			ui.FormatHelpItem("t", "Stats"),
			ui.FormatHelpItem("q", "Quit"),
		}
	}
	help := strings.Join(items, sep)

	api := ui.FooterLabelStyle.Render(m.baseURL)
	spacing := width - lipgloss.Width(help) - lipgloss.Width(api) - 4
	if spacing < 1 {
		spacing = 1
	}
	return ui.FooterStyle.Width(width).Render(help + strings.Repeat(" ", spacing) + api)
}

func (m Model) renderList() string {
	var b strings.Builder

	filter := "all"
	if s := m.statusFilter(); s != "" {
		filter = string(s)
	}
	b.WriteString(ui.TitleStyle.Render(fmt.Sprintf("Service Requests (%d)", m.total)) + "\n")
	b.WriteString(ui.SubtitleStyle.Render("Status: "+filter) + "\n")
	if m.searching || m.search.Value() != "" {
		b.WriteString("Search: " + m.search.View() + "\n")
	}
	b.WriteString("\n")

	if len(m.requests) == 0 {
		if !m.loading {
			b.WriteString(ui.MenuItemStyle.Render("No service requests found"))
		}
		return b.String()
	}

	for i, sr := range m.requests {
		cursor, style := renderCursor(i == m.cursor)
		row := fmt.Sprintf("#%-5d %-10s %-5s %-22s %-30s %12s",
			sr.ID, sr.PreferredDate, sr.PreferredTime,
			truncate(sr.CustomerName, 22), truncate(serviceLabel(sr), 30),
			ui.CurrencySymbol+" "+sr.TotalCustomerPaid.StringFixed(2))
		b.WriteString(cursor + style.Render(row) + " " + ui.FormatStatus(string(sr.Status)) + "\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	sr := m.current
	if sr == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render(fmt.Sprintf("Request #%d  %s", sr.ID, serviceLabel(*sr))) + "\n")

	field := func(label, value string) {
		b.WriteString(ui.LabelStyle.Render(label) + ui.ValueStyle.Render(value) + "\n")
	}
	b.WriteString(ui.LabelStyle.Render("Status") + ui.FormatStatus(string(sr.Status)) + "\n")
	field("Priority", string(sr.Priority))
	field("Customer", sr.CustomerName)
	field("Email", sr.CustomerEmail)
	field("Phone", sr.CustomerPhone)
	field("Address", joinNonEmpty(", ", sr.UnitNumber, sr.ComplexName, sr.CustomerAddress))
	field("Slot", sr.PreferredDate+" "+sr.PreferredTime)
	if sr.ProviderName != "" {
		field("Provider", joinNonEmpty(" / ", sr.ProviderName, sr.ProviderPhone))
	}
	b.WriteString("\n")

	b.WriteString(ui.SubtitleStyle.Render("Items") + "\n")
	for _, it := range sr.SelectedItems {
		line := fmt.Sprintf("%dx %s / %s", it.Quantity, it.Category, it.ServiceType)
		if it.IsWhite {
			line += " (white)"
		}
		b.WriteString("  " + ui.ValueStyle.Render(line) + "  " + ui.FormatMoney(it.LineCustomerTotal) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(ui.LabelStyle.Render("Customer pays") + ui.FormatMoney(sr.TotalCustomerPaid) + "\n")
	b.WriteString(ui.LabelStyle.Render("Provider payout") + ui.FormatMoney(sr.TotalProviderPayout) + "\n")
	b.WriteString(ui.LabelStyle.Render("Commission") + ui.FormatMoney(sr.TotalCommissionEarned) + "\n")
	b.WriteString(ui.LabelStyle.Render("Customer paid") + ui.FormatBool(sr.CustomerPaymentReceived) + "\n")
	b.WriteString(ui.LabelStyle.Render("Provider paid") + ui.FormatBool(sr.ProviderPaymentMade) + "\n")
	b.WriteString(ui.LabelStyle.Render("Commission in") + ui.FormatBool(sr.CommissionCollected) + "\n")

	if len(m.history) > 0 {
		b.WriteString("\n" + ui.SubtitleStyle.Render("History") + "\n")
		for _, h := range m.history {
			line := fmt.Sprintf("%s  %-13s %s", h.PerformedAt.Format(fmtDateTimeDisplay), h.Action, h.PerformedBy)
			if h.FieldChanged != "" {
				line += fmt.Sprintf("  %s: %s -> %s", h.FieldChanged, h.OldValue, h.NewValue)
			}
			b.WriteString("  " + ui.MenuItemStyle.Render(line) + "\n")
		}
	}
	return b.String()
}

func (m Model) renderStats() string {
	s := m.stats
	if s == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("Dashboard") + "\n")

	count := func(label string, n int) {
		b.WriteString(ui.LabelStyle.Render(label) + ui.ValueStyle.Render(fmt.Sprintf("%d", n)) + "\n")
	}
	count("Total bookings", s.TotalBookings)
	count("Pending", s.Pending)
	count("Confirmed", s.Confirmed)
	count("In progress", s.InProgress)
	count("Completed", s.Completed)
	count("Cancelled", s.Cancelled)
	b.WriteString("\n" + ui.SubtitleStyle.Render("This month") + "\n")
	count("Jobs", s.ThisMonthJobs)
	b.WriteString(ui.LabelStyle.Render("Revenue") + ui.FormatMoney(s.ThisMonthRevenue) + "\n")
	b.WriteString(ui.LabelStyle.Render("Commission") + ui.FormatMoney(s.ThisMonthCommission) + "\n")
	b.WriteString(ui.LabelStyle.Render("Avg commission") + ui.FormatMoney(s.AvgCommission) + "\n")
	b.WriteString("\n" + ui.LabelStyle.Render("All-time commission") + ui.FormatMoney(s.TotalCommission) + "\n")
	return b.String()
}

// renderCursor returns cursor string and style based on selection state
func renderCursor(selected bool) (string, lipgloss.Style) {
	if selected {
		return ui.CursorStyle.Render("> "), ui.SelectedMenuItemStyle
	}
	return "  ", ui.MenuItemStyle
}

func serviceLabel(sr models.ServiceRequestResponse) string {
	if len(sr.SelectedItems) == 0 {
		return "Cleaning Service"
	}
	label := sr.SelectedItems[0].Category
	if n := len(sr.SelectedItems); n > 1 {
		label += fmt.Sprintf(" +%d", n-1)
	}
	return label
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
