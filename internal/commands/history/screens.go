package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) updateRecordList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.List.FilterState() != list.Filtering {
		switch msg.String() {
		case "enter":
			if len(m.Records) == 0 {
				return *m, nil
			}
			selected := m.List.SelectedItem().(RecordListItem)
			m.SelectedRecord = &selected.Record
			m.Viewport.SetContent(renderRecord(selected.Record, m.Viewport.Width))
			m.Viewport.GotoTop()
			m.Screen = ScreenRecordDetail
			return *m, nil

		case "f":
			// Only the newest exchange can be forgotten
			if len(m.Records) == 0 {
				return *m, nil
			}
			m.SelectedRecord = &m.Records[0]
			m.Screen = ScreenConfirmForget
			return *m, nil
		}
	}

	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return *m, cmd
}

func (m *Model) updateRecordDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return *m, cmd
}

func (m *Model) updateConfirmForget(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.StatusMsg = "Forgetting..."
			return *m, forgetLatest(m.Store)

		case "n", "N":
			m.backToList()
			return *m, nil
		}
	}

	return *m, nil
}

func (m *Model) renderView() string {
	if m.Quitting {
		return "Goodbye!\n"
	}

	var s strings.Builder

	switch m.Screen {
	case ScreenRecordList:
		if len(m.Records) == 0 {
			s.WriteString(TitleStyle.Render("Conversations"))
			s.WriteString("\n\n")
			s.WriteString(SubtitleStyle.Render("No conversations stored yet."))
			s.WriteString("\n\n")
			s.WriteString(HelpStyle.Render("Press 'q' to quit"))
		} else {
			s.WriteString(m.List.View())
		}

	case ScreenRecordDetail:
		if m.SelectedRecord != nil {
			s.WriteString(TitleStyle.Render(fmt.Sprintf("Conversation #%d", m.SelectedRecord.ID)))
			s.WriteString("\n")
			s.WriteString(SubtitleStyle.Render(m.SelectedRecord.CreatedAt.Format("2006-01-02 15:04:05")))
			s.WriteString("\n")
			s.WriteString(m.Viewport.View())
			s.WriteString("\n\n")
			s.WriteString(HelpStyle.Render("↑/↓ to scroll, Esc to go back"))
		}

	case ScreenConfirmForget:
		s.WriteString(WarningStyle.Render("Forget Latest Conversation"))
		s.WriteString("\n\n")
		s.WriteString("This permanently deletes the most recent exchange:\n\n")
		if m.SelectedRecord != nil {
			s.WriteString(DetailValueStyle.Render(firstLine(m.SelectedRecord.Prompt)))
			s.WriteString("\n\n")
		}
		s.WriteString(HelpStyle.Render("Press 'y' to confirm, 'n' or Esc to cancel"))
	}

	if m.StatusMsg != "" {
		s.WriteString("\n\n")
		s.WriteString(SubtitleStyle.Render(m.StatusMsg))
	}

	if m.Err != nil {
		s.WriteString("\n\n")
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.Err)))
	}

	return s.String()
}
