package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/austiecodes/vera/internal/memory/memtypes"
	"github.com/austiecodes/vera/internal/memory/store"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenRecordList Screen = iota
	ScreenRecordDetail
	ScreenConfirmForget
)

// RecordListItem implements list.Item for a stored conversation
type RecordListItem struct {
	Record memtypes.ConversationRecord
}

func (i RecordListItem) Title() string { return firstLine(i.Record.Prompt) }
func (i RecordListItem) Description() string {
	return fmt.Sprintf("#%d  %s", i.Record.ID, i.Record.CreatedAt.Format("2006-01-02 15:04"))
}
func (i RecordListItem) FilterValue() string { return i.Record.Prompt + " " + i.Record.Response }

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// Model is the Bubble Tea model for the history command
type Model struct {
	Store          store.ConversationStore
	Limit          int
	Screen         Screen
	List           list.Model
	Viewport       viewport.Model
	SelectedRecord *memtypes.ConversationRecord
	Records        []memtypes.ConversationRecord
	Total          int
	Err            error
	StatusMsg      string
	Quitting       bool
	Width          int
	Height         int
}

// RecordsLoadedMsg is sent when records are loaded from the store
type RecordsLoadedMsg struct {
	Records []memtypes.ConversationRecord
	Total   int
	Err     error
}

// RecordForgottenMsg is sent after the latest record is deleted
type RecordForgottenMsg struct {
	Err error
}
