package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"shortsbot/types"
)

// Model mirrors the server's run state
type Model struct {
	Client *StatusClient

	Status    types.StatusResponse
	Connected bool
	Err       error
}

// NewModel creates a model polling the server at baseURL
func NewModel(baseURL string) Model {
	return Model{
		Client: NewStatusClient(baseURL),
		Status: types.StatusResponse{State: types.StateIdle},
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(pollStatus(m.Client), tickCmd())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "R":
			if m.Connected && !m.Status.State.Busy() {
				return m, startRun(m.Client)
			}
		}
	case TickMsg:
		return m, tea.Batch(pollStatus(m.Client), tickCmd())
	case StatusUpdateMsg:
		if msg.Err != nil {
			m.Connected = false
			m.Err = msg.Err
			return m, nil
		}
		m.Connected = true
		m.Err = nil
		m.Status = *msg.Status
	case StartRunMsg:
		m.Err = msg.Err
	}
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎬 shortsbot"))
	b.WriteString("\n\n")
	b.WriteString(m.stateText())
	b.WriteString("\n\n")

	if m.Status.RunID != "" {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("Run: %s", m.Status.RunID)))
		b.WriteString("\n")
	}
	if m.Status.ClipCount > 0 {
		b.WriteString(InfoStyle.Render(fmt.Sprintf("📊 Clips: %d", m.Status.ClipCount)))
		b.WriteString("\n")
	}

	if len(m.Status.Logs) > 0 {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("📝 Recent Activity:"))
		b.WriteString("\n")
		logs := m.Status.Logs
		if len(logs) > 12 {
			logs = logs[len(logs)-12:]
		}
		for _, entry := range logs {
			line := fmt.Sprintf("   %s %s", entry.Timestamp.Format("15:04:05"), entry.Message)
			b.WriteString(InfoStyle.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.Status.State == types.StateComplete && m.Status.LastResult != nil {
		b.WriteString(BoxStyle.Render(formatResult(m.Status.LastResult)))
		b.WriteString("\n\n")
	}

	if m.Status.State.Busy() {
		b.WriteString(InfoStyle.Render(textFooterRunning))
	} else {
		b.WriteString(InfoStyle.Render(textFooterIdle))
	}
	return b.String()
}

func (m Model) stateText() string {
	if !m.Connected {
		msg := "❌ Not connected to shortsbot server"
		if m.Err != nil {
			msg += ": " + m.Err.Error()
		}
		return ErrorStyle.Render(msg)
	}

	switch m.Status.State {
	case types.StateIdle:
		return HighlightStyle.Render("👋 Idle")
	case types.StateFinding:
		return StatusStyle.Render("🔎 Finding clips...")
	case types.StateDownloading:
		return StatusStyle.Render("⬇️  Downloading clips...")
	case types.StateCaptioning:
		return StatusStyle.Render("🎙️  Transcribing and captioning...")
	case types.StateComposing:
		return StatusStyle.Render("🎬 Rendering video...")
	case types.StateArchiving:
		return StatusStyle.Render("📦 Archiving...")
	case types.StateUploading:
		return StatusStyle.Render("📤 Uploading...")
	case types.StateComplete:
		return HighlightStyle.Render("✅ COMPLETE")
	case types.StateError:
		return ErrorStyle.Render(fmt.Sprintf("❌ Error: %s", m.Status.Error))
	default:
		return string(m.Status.State)
	}
}

func formatResult(r *types.RunResult) string {
	var b strings.Builder
	b.WriteString(HighlightStyle.Render("Last Run"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Title: %s\n", r.Title)
	fmt.Fprintf(&b, "File: %s (%.1fs, %d clips)\n", r.VideoPath, r.Duration, len(r.ClipIDs))
	if r.VideoID != "" {
		fmt.Fprintf(&b, "YouTube: https://youtube.com/shorts/%s\n", r.VideoID)
	}
	if r.ArchiveKey != "" {
		fmt.Fprintf(&b, "Archive: %s\n", r.ArchiveKey)
	}
	return b.String()
}
