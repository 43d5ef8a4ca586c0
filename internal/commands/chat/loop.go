package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/austiecodes/vera/internal/engine"
)

var (
	PromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	ReplyLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("141")).
			Bold(true)

	HintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// Responder is the part of the engine the loop drives.
type Responder interface {
	Respond(ctx context.Context, prompt string) (string, error)
}

// Loop reads prompts line by line and prints replies until EOF or an exit
// command.
type Loop struct {
	Engine        Responder
	In            io.Reader
	Out           io.Writer
	ForgetCommand string
}

// Run blocks until the user leaves, input ends or ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(l.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprintln(l.Out, HintStyle.Render("Talk to Vera. Type "+l.ForgetCommand+" to drop the last exchange, /exit to leave."))
	for {
		fmt.Fprint(l.Out, PromptStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(l.Out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		prompt := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(prompt) {
		case "":
			continue
		case "/exit", "/quit":
			fmt.Fprintln(l.Out, HintStyle.Render("Goodbye!"))
			return nil
		}

		reply, err := l.Engine.Respond(ctx, prompt)
		var persistErr *engine.PersistError
		if err != nil && !errors.As(err, &persistErr) {
			fmt.Fprintln(l.Out, ErrorStyle.Render("Error: "+err.Error()))
			continue
		}

		if l.isForget(prompt) {
			fmt.Fprintln(l.Out, HintStyle.Render("Forgot the last exchange."))
			continue
		}
		fmt.Fprintln(l.Out, ReplyLabelStyle.Render("vera> ")+reply)
		if persistErr != nil {
			fmt.Fprintln(l.Out, WarningStyle.Render("This reply was not saved to memory."))
		}
	}
}

func (l *Loop) isForget(prompt string) bool {
	return l.ForgetCommand != "" && strings.HasPrefix(strings.ToLower(prompt), strings.ToLower(l.ForgetCommand))
}
