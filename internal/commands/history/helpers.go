package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/memory/store"
)

func createRecordList(records []memtypes.ConversationRecord, total, width, height int) list.Model {
	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[i] = RecordListItem{Record: rec}
	}

	w := max(min(width-4, 80), 40)
	h := max(min(height-6, 20), 10)

	l := list.New(items, list.NewDefaultDelegate(), w, h)
	l.Title = listTitle(len(records), total)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
			key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "forget latest")),
		}
	}
	return l
}

func listTitle(shown, total int) string {
	if shown < total {
		return fmt.Sprintf("Conversations (latest %d of %d)", shown, total)
	}
	return fmt.Sprintf("Conversations (%d)", total)
}

// renderRecord lays out one exchange for the detail viewport.
func renderRecord(rec memtypes.ConversationRecord, width int) string {
	var s strings.Builder
	s.WriteString(DetailLabelStyle.Render("You:"))
	s.WriteString("\n")
	s.WriteString(DetailValueStyle.Width(width).Render(rec.Prompt))
	s.WriteString("\n\n")
	s.WriteString(DetailLabelStyle.Render("Vera:"))
	s.WriteString("\n")
	s.WriteString(DetailValueStyle.Width(width).Render(rec.Response))
	return s.String()
}

func loadRecords(st store.ConversationStore, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		records, err := st.Recent(ctx, limit)
		if err != nil {
			return RecordsLoadedMsg{Err: err}
		}
		total, err := st.Count(ctx)
		return RecordsLoadedMsg{Records: records, Total: total, Err: err}
	}
}

func forgetLatest(st store.ConversationStore) tea.Cmd {
	return func() tea.Msg {
		return RecordForgottenMsg{Err: st.DeleteMostRecent(context.Background())}
	}
}
