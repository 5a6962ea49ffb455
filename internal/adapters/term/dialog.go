package term

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/liftlab/liftoff/internal/ports"
)

var (
	dialogTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F87171"))
	dialogButtonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
)

// Dialog asks recovery questions on a terminal: it prints the failure, the
// offered answers, and reads one line per ask. Input is matched by first
// letter or full word; anything else re-prompts. EOF answers abort.
type Dialog struct {
	in  *bufio.Reader
	out io.Writer
}

// NewDialog creates a dialog reading from in and writing to out.
func NewDialog(in io.Reader, out io.Writer) *Dialog {
	return &Dialog{
		in:  bufio.NewReader(in),
		out: out,
	}
}

type readResult struct {
	text string
	err  error
}

// Show renders the prompt and blocks for an answer, ctx cancellation, or
// EOF. Only the offered buttons are accepted.
func (d *Dialog) Show(ctx context.Context, req ports.DialogRequest) (ports.DialogChoice, error) {
	fmt.Fprintf(d.out, "\n%s\n%s\n", dialogTitleStyle.Render(req.Title), req.Message)

	prompt := renderButtons(req.Buttons)
	for {
		fmt.Fprintf(d.out, "%s > ", prompt)

		lines := make(chan readResult, 1)
		go func() {
			text, err := d.in.ReadString('\n')
			lines <- readResult{text: text, err: err}
		}()

		select {
		case <-ctx.Done():
			return ports.ChoiceAbort, ctx.Err()
		case res := <-lines:
			if choice, ok := matchChoice(res.text, req.Buttons); ok {
				return choice, nil
			}
			if res.err != nil {
				// EOF or a broken reader: no answer is coming.
				return ports.ChoiceAbort, nil
			}
		}
	}
}

func renderButtons(buttons []ports.DialogButton) string {
	parts := make([]string, 0, len(buttons))
	for _, b := range buttons {
		label := b.Label
		if label == "" {
			label = string(b.Choice)
		}
		key := string(b.Choice)[:1]
		parts = append(parts, dialogButtonStyle.Render(fmt.Sprintf("[%s] %s", key, label)))
	}
	return strings.Join(parts, "  ")
}

func matchChoice(input string, buttons []ports.DialogButton) (ports.DialogChoice, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", false
	}
	for _, b := range buttons {
		word := string(b.Choice)
		if input == word || input == word[:1] {
			return b.Choice, true
		}
	}
	return "", false
}
