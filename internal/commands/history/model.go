package history

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/austiecodes/vera/internal/memory/store"
)

func initialModel(st store.ConversationStore, limit int) Model {
	// Create an empty list initially, will be populated after load
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 60, 14)
	l.Title = "Conversations"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return Model{
		Store:     st,
		Limit:     limit,
		Screen:    ScreenRecordList,
		List:      l,
		Viewport:  viewport.New(80, 20),
		StatusMsg: "Loading conversations...",
	}
}

func (m Model) Init() tea.Cmd {
	return loadRecords(m.Store, m.Limit)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.List.SetSize(min(msg.Width-4, 80), min(msg.Height-6, 20))
		m.Viewport.Width = max(min(msg.Width-4, 100), 40)
		m.Viewport.Height = max(msg.Height-10, 5)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.Screen == ScreenRecordList {
				m.Quitting = true
				return m, tea.Quit
			}
			m.backToList()
			return m, nil

		case "esc":
			if m.Screen != ScreenRecordList {
				m.backToList()
				return m, nil
			}
		}

	case RecordsLoadedMsg:
		m.StatusMsg = ""
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Records = msg.Records
		m.Total = msg.Total
		m.List = createRecordList(m.Records, m.Total, m.Width, m.Height)
		return m, nil

	case RecordForgottenMsg:
		m.StatusMsg = ""
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.backToList()
		m.StatusMsg = "Latest conversation forgotten."
		return m, loadRecords(m.Store, m.Limit)
	}

	switch m.Screen {
	case ScreenRecordList:
		return m.updateRecordList(msg)
	case ScreenRecordDetail:
		return m.updateRecordDetail(msg)
	case ScreenConfirmForget:
		return m.updateConfirmForget(msg)
	}

	return m, nil
}

func (m Model) View() string {
	return m.renderView()
}

func (m *Model) backToList() {
	m.Screen = ScreenRecordList
	m.SelectedRecord = nil
	m.Err = nil
	m.StatusMsg = ""
}
