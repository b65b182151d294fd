package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zlovtnik/homeswift/cmd/console/api"
	"github.com/zlovtnik/homeswift/internal/models"
)

// fetchTimeout is the maximum time to wait for an API call
const fetchTimeout = 10 * time.Second

type (
	requestsMsg struct {
		page *models.PaginatedResponse[models.ServiceRequestResponse]
	}
	requestMsg struct {
		request *models.ServiceRequestResponse
		history []models.HistoryEntry
	}
	statusChangedMsg struct {
		request *models.ServiceRequestResponse
	}
	sweepMsg struct {
		result *models.ReminderSweepResult
	}
	statsMsg struct {
		stats *models.AdminStats
	}
	errMsg struct{ err error }
)

func (e errMsg) Error() string { return e.err.Error() }

func fetchRequests(client *api.Client, status models.RequestStatus, search string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		page, err := client.ListRequests(ctx, status, search, 1)
		if err != nil {
			return errMsg{err}
		}
		return requestsMsg{page}
	}
}

func fetchRequest(client *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		sr, err := client.GetRequest(ctx, id)
		if err != nil {
			return errMsg{err}
		}
		history, err := client.History(ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return requestMsg{request: sr, history: history}
	}
}

func setStatus(client *api.Client, id int64, status models.RequestStatus) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		sr, err := client.SetStatus(ctx, id, status)
		if err != nil {
			return errMsg{err}
		}
		return statusChangedMsg{sr}
	}
}

func sendReminders(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		// the sweep sends synchronously, give it more room
		ctx, cancel := context.WithTimeout(context.Background(), 6*fetchTimeout)
		defer cancel()

		res, err := client.SendReminders(ctx)
		if err != nil {
			return errMsg{err}
		}
		return sweepMsg{res}
	}
}

func fetchStats(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		stats, err := client.Stats(ctx)
		if err != nil {
			return errMsg{err}
		}
		return statsMsg{stats}
	}
}
