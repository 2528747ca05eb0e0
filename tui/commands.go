package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shortsbot/types"
)

// StatusUpdateMsg carries a polled status
type StatusUpdateMsg struct {
	Status *types.StatusResponse
	Err    error
}

// TickMsg triggers the next poll
type TickMsg struct {
	Time time.Time
}

// StartRunMsg reports the result of a start request
type StartRunMsg struct {
	Err error
}

func pollStatus(client *StatusClient) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		return StatusUpdateMsg{Status: status, Err: err}
	}
}

func startRun(client *StatusClient) tea.Cmd {
	return func() tea.Msg {
		return StartRunMsg{Err: client.StartRun()}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
