package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marshallshelly/forkline/cmd/forkline/output"
	"github.com/marshallshelly/forkline/pkg/analytics"
	"github.com/marshallshelly/forkline/pkg/runtime"
)

// BrowseMode represents the current mode of the report browser
type BrowseMode int

const (
	ModeList BrowseMode = iota
	ModeRunning
	ModeResult
	ModeError
)

// reportItem adapts a registered report to the list widget.
type reportItem struct {
	report analytics.Report
}

func (i reportItem) FilterValue() string { return i.report.Name }
func (i reportItem) Title() string       { return i.report.Name }
func (i reportItem) Description() string { return i.report.Description }

// Connector opens the database connection the browser runs reports over.
type Connector func(ctx context.Context) (*runtime.DB, error)

// BrowseModel is the Bubbletea model for the interactive report browser
type BrowseModel struct {
	mode     BrowseMode
	list     list.Model
	connect  Connector
	db       *runtime.DB
	lib      *analytics.Library
	title    string
	rendered string
	err      error
	width    int
	height   int
}

// NewBrowseModel creates a new report browser model
func NewBrowseModel(connect Connector) BrowseModel {
	items := make([]list.Item, 0, len(analytics.Reports))
	for _, r := range analytics.Reports {
		items = append(items, reportItem{report: r})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Forkline Reports"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return BrowseModel{
		mode:    ModeList,
		list:    l,
		connect: connect,
	}
}

// Init initializes the model
func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(
		connectCmd(m.connect),
		tea.EnterAltScreen,
	)
}

// Messages
type connectedMsg struct {
	db *runtime.DB
}

type reportDoneMsg struct {
	title    string
	rendered string
}

type errorMsg struct {
	err error
}

// Commands
func connectCmd(connect Connector) tea.Cmd {
	return func() tea.Msg {
		db, err := connect(context.Background())
		if err != nil {
			return errorMsg{err: err}
		}
		return connectedMsg{db: db}
	}
}

func runReportCmd(lib *analytics.Library, report analytics.Report) tea.Cmd {
	return func() tea.Msg {
		table, err := report.Run(context.Background(), lib)
		if err != nil {
			return errorMsg{err: err}
		}
		return reportDoneMsg{
			title:    report.Description,
			rendered: output.RenderTable(table),
		}
	}
}

// Update handles messages
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case connectedMsg:
		m.db = msg.db
		m.lib = analytics.New(msg.db)
		return m, nil

	case reportDoneMsg:
		m.mode = ModeResult
		m.title = msg.title
		m.rendered = msg.rendered
		return m, nil

	case errorMsg:
		m.mode = ModeError
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.mode == ModeList && m.list.FilterState() == list.Filtering {
				break
			}
			m.close()
			return m, tea.Quit

		case "esc":
			if m.mode == ModeResult || m.mode == ModeError {
				m.mode = ModeList
				return m, nil
			}

		case "enter":
			if m.mode == ModeList {
				item, ok := m.list.SelectedItem().(reportItem)
				if !ok {
					return m, nil
				}
				if m.lib == nil {
					m.mode = ModeError
					m.err = runtime.ErrNoConnection
					return m, nil
				}
				m.mode = ModeRunning
				m.title = item.report.Description
				return m, runReportCmd(m.lib, item.report)
			}
		}
	}

	if m.mode == ModeList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the current mode
func (m BrowseModel) View() string {
	switch m.mode {
	case ModeRunning:
		return titleStyle.Render(m.title) + "\n" + mutedStyle.Render("running...")

	case ModeResult:
		var sb strings.Builder
		sb.WriteString(titleStyle.Render(m.title))
		sb.WriteByte('\n')
		sb.WriteString(resultBoxStyle.Render(m.rendered))
		sb.WriteByte('\n')
		sb.WriteString(helpStyle.Render(FormatKey("esc", "back") + "  " + FormatKey("q", "quit")))
		return sb.String()

	case ModeError:
		return errorStyle.Render(m.err.Error()) + "\n" +
			helpStyle.Render(FormatKey("esc", "back")+"  "+FormatKey("q", "quit"))

	default:
		return m.list.View()
	}
}

func (m *BrowseModel) close() {
	if m.db != nil {
		m.db.Close()
	}
}

// RunBrowser starts the interactive report browser
func RunBrowser(connect Connector) error {
	p := tea.NewProgram(NewBrowseModel(connect), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run report browser: %w", err)
	}
	if m, ok := final.(BrowseModel); ok {
		m.close()
	}
	return nil
}
