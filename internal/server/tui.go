// ABOUTME: Bridge TUI for displaying the shared threshold and connected clients
// ABOUTME: Real-time bridge status display using bubbletea
package server

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ServerTUI manages the bridge TUI
type ServerTUI struct {
	program  *tea.Program
	updates  chan ServerStatus
	quitChan chan struct{} // Signal to stop the server
	done     chan struct{}
	stopOnce sync.Once
}

// ServerStatus holds bridge state for the TUI
type ServerStatus struct {
	Name      string
	Port      int
	Source    string
	Threshold float64
	Min       float64
	Max       float64
	Selected  int
	Windows   int
	Clients   []ClientInfo
}

// ClientInfo holds client information for display
type ClientInfo struct {
	ID         string
	RemoteAddr string
}

// tuiModel is the bubbletea model for the bridge TUI
type tuiModel struct {
	status    ServerStatus
	startTime time.Time
	quitting  bool
	quitChan  chan struct{}
}

type tickMsg time.Time
type statusMsg ServerStatus

func (m tuiModel) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			select {
			case m.quitChan <- struct{}{}:
			default:
			}
			return m, tea.Quit
		}

	case tickMsg:
		return m, tickEvery()

	case statusMsg:
		m.status = ServerStatus(msg)
		return m, nil
	}

	return m, nil
}

func (m tuiModel) View() string {
	if m.quitting {
		return "Shutting down bridge...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250"))

	clientHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("220"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("Egloorator Bridge"))
	b.WriteString("\n\n")

	field := func(name, value string) {
		b.WriteString(headerStyle.Render(name + ": "))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	field("Bridge", m.status.Name)
	field("Port", fmt.Sprintf("%d", m.status.Port))
	field("Uptime", time.Since(m.startTime).Round(time.Second).String())
	field("Source", filepath.Base(m.status.Source))
	field("Threshold", fmt.Sprintf("%.2f dB (range %.2f .. %.2f)", m.status.Threshold, m.status.Min, m.status.Max))
	field("Selected", fmt.Sprintf("%d/%d windows", m.status.Selected, m.status.Windows))
	b.WriteString("\n")

	b.WriteString(clientHeaderStyle.Render(fmt.Sprintf("Connected Clients (%d)", len(m.status.Clients))))
	b.WriteString("\n\n")

	if len(m.status.Clients) == 0 {
		b.WriteString(valueStyle.Render("  No clients connected"))
		b.WriteString("\n")
	} else {
		for _, client := range m.status.Clients {
			b.WriteString(fmt.Sprintf("  • %s", client.RemoteAddr))
			b.WriteString(valueStyle.Render(fmt.Sprintf(" (%s)", client.ID)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press 'q' or Ctrl+C to quit"))

	return b.String()
}

// NewServerTUI creates a bridge TUI showing initial until updates arrive
func NewServerTUI(initial ServerStatus) *ServerTUI {
	t := &ServerTUI{
		updates:  make(chan ServerStatus, 10),
		quitChan: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	m := tuiModel{
		status:    initial,
		startTime: time.Now(),
		quitChan:  t.quitChan,
	}
	t.program = tea.NewProgram(m, tea.WithAltScreen())

	return t
}

// Start runs the TUI until it quits
func (t *ServerTUI) Start() error {
	go func() {
		for {
			select {
			case status := <-t.updates:
				t.program.Send(statusMsg(status))
			case <-t.done:
				return
			}
		}
	}()

	_, err := t.program.Run()
	return err
}

// Update sends a status update to the TUI
func (t *ServerTUI) Update(status ServerStatus) {
	select {
	case <-t.done:
	case t.updates <- status:
	default:
		// Don't block if channel is full
	}
}

// Stop stops the TUI
func (t *ServerTUI) Stop() {
	t.stopOnce.Do(func() {
		t.program.Quit()
		close(t.done)
	})
}

// QuitChan returns the channel that signals when user wants to quit
func (t *ServerTUI) QuitChan() <-chan struct{} {
	return t.quitChan
}

// status snapshots the bridge for the TUI
func (s *Server) status() ServerStatus {
	s.sessionMu.Lock()
	low, high := s.session.Range()
	status := ServerStatus{
		Name:      s.config.Name,
		Port:      s.config.Port,
		Source:    s.config.Source,
		Threshold: s.session.Threshold(),
		Min:       low,
		Max:       high,
		Selected:  len(s.session.Segments()),
		Windows:   s.session.Curve().Len(),
	}
	s.sessionMu.Unlock()

	s.clientsMu.RLock()
	for _, client := range s.clients {
		status.Clients = append(status.Clients, ClientInfo{ID: client.ID, RemoteAddr: client.RemoteAddr})
	}
	s.clientsMu.RUnlock()

	sort.Slice(status.Clients, func(i, j int) bool {
		return status.Clients[i].RemoteAddr < status.Clients[j].RemoteAddr
	})

	return status
}

// updateTUI sends current bridge state to the TUI
func (s *Server) updateTUI() {
	if s.tui == nil {
		return
	}
	s.tui.Update(s.status())
}
