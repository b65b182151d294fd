package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zlovtnik/homeswift/cmd/console/api"
	"github.com/zlovtnik/homeswift/cmd/console/ui"
	"github.com/zlovtnik/homeswift/internal/models"
)

// viewState is the screen currently shown
type viewState int

const (
	viewRequests viewState = iota
	viewDetail
	viewStats
)

// statusFilters is the cycle order of the list filter; "" lists everything
var statusFilters = []models.RequestStatus{
	"",
	models.RequestStatusPending,
	models.RequestStatusConfirmed,
	models.RequestStatusInProgress,
	models.RequestStatusCompleted,
	models.RequestStatusCancelled,
}

// statusKeys maps detail-view shortcuts to the status they set
var statusKeys = map[string]models.RequestStatus{
	"c": models.RequestStatusConfirmed,
	"s": models.RequestStatusInProgress,
	"d": models.RequestStatusCompleted,
	"x": models.RequestStatusCancelled,
}

// Model is the console state
type Model struct {
	client  *api.Client
	baseURL string
	user    string

	view          viewState
	width, height int

	filter    int
	search    textinput.Model
	searching bool

	requests []models.ServiceRequestResponse
	total    int
	cursor   int

	current *models.ServiceRequestResponse
	history []models.HistoryEntry
	stats   *models.AdminStats

	loading     bool
	message     string
	messageType string
}

func newModel(client *api.Client, baseURL, user string) Model {
	search := textinput.New()
	search.Placeholder = "name, email or phone"
	search.CharLimit = 100
	search.Width = 40

	return Model{
		client:  client,
		baseURL: baseURL,
		user:    user,
		view:    viewRequests,
		search:  search,
		loading: true,
	}
}

// Init loads the first page of requests
func (m Model) Init() tea.Cmd {
	return m.refreshList()
}

func (m Model) statusFilter() models.RequestStatus {
	return statusFilters[m.filter]
}

func (m Model) refreshList() tea.Cmd {
	return fetchRequests(m.client, m.statusFilter(), m.search.Value())
}

func (m Model) selected() *models.ServiceRequestResponse {
	if m.cursor < 0 || m.cursor >= len(m.requests) {
		return nil
	}
	return &m.requests[m.cursor]
}

func (m *Model) setMessage(kind, text string) {
	m.messageType = kind
	m.message = text
}

// Update handles messages and key presses
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case requestsMsg:
		m.loading = false
		m.requests = msg.page.Data
		m.total = msg.page.TotalCount
		if m.cursor >= len(m.requests) {
			m.cursor = max(len(m.requests)-1, 0)
		}
		return m, nil

	case requestMsg:
		m.loading = false
		m.current = msg.request
		m.history = msg.history
		m.view = viewDetail
		return m, nil

	case statusChangedMsg:
		m.loading = false
		if m.current != nil && m.current.ID == msg.request.ID {
			m.current = msg.request
		}
		m.setMessage(ui.MessageTypeSuccess, fmt.Sprintf("Request #%d is now %s", msg.request.ID, msg.request.Status))
		// reload so the history shows the transition
		return m, tea.Batch(fetchRequest(m.client, msg.request.ID), m.refreshList())

	case sweepMsg:
		m.loading = false
		r := msg.result
		kind := ui.MessageTypeSuccess
		if r.Failed > 0 {
			kind = ui.MessageTypeError
		}
		m.setMessage(kind, fmt.Sprintf("Reminders: %d due, %d sent, %d failed", r.Candidates, r.Sent, r.Failed))
		return m, nil

	case statsMsg:
		m.loading = false
		m.stats = msg.stats
		m.view = viewStats
		return m, nil

	case errMsg:
		m.loading = false
		m.setMessage(ui.MessageTypeError, msg.Error())
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "m":
		m.loading = true
		m.setMessage(ui.MessageTypeInfo, "Sending tomorrow's reminders...")
		return m, sendReminders(m.client)
	case "t":
		m.loading = true
		return m, fetchStats(m.client)
	}

	switch m.view {
	case viewDetail:
		return m.handleDetailKey(msg)
	case viewStats:
		return m.handleStatsKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.requests)-1 {
			m.cursor++
		}
	case "tab", "f":
		m.filter = (m.filter + 1) % len(statusFilters)
		m.cursor = 0
		m.loading = true
		return m, m.refreshList()
	case "shift+tab":
		m.filter = (m.filter + len(statusFilters) - 1) % len(statusFilters)
		m.cursor = 0
		m.loading = true
		return m, m.refreshList()
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "r":
		m.loading = true
		return m, m.refreshList()
	case "enter":
		if sr := m.selected(); sr != nil {
			m.loading = true
			return m, fetchRequest(m.client, sr.ID)
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		m.cursor = 0
		m.loading = true
		return m, m.refreshList()
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.current == nil {
		m.view = viewRequests
		return m, nil
	}
	key := msg.String()
	switch key {
	case "esc", "backspace":
		m.view = viewRequests
		m.current = nil
		m.history = nil
		return m, nil
	case "r":
		m.loading = true
		return m, fetchRequest(m.client, m.current.ID)
	}
	if status, ok := statusKeys[key]; ok {
		if status == m.current.Status {
			return m, nil
		}
		m.loading = true
		return m, setStatus(m.client, m.current.ID, status)
	}
	return m, nil
}

func (m Model) handleStatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.view = viewRequests
	case "r":
		m.loading = true
		return m, fetchStats(m.client)
	}
	return m, nil
}
