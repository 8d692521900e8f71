package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/waldirborbajr/appstorecheck/logger"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
)

// Confirmer asks a yes/no question
type Confirmer func(title, description string) (bool, error)

// Terminal renders the update prompt on a terminal and asks for confirmation
type Terminal struct {
	out     io.Writer
	confirm Confirmer
	width   int
}

// NewTerminal returns a Terminal writing to out. A nil confirm uses an interactive huh form.
func NewTerminal(out io.Writer, confirm Confirmer) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	t := &Terminal{out: out, confirm: confirm, width: 60}
	if t.confirm == nil {
		t.confirm = t.huhConfirm
	}
	return t
}

// PresentUpdatePrompt shows the release and calls onConfirm or onDismiss, never both
func (t *Terminal) PresentUpdatePrompt(version, releaseDate, releaseNotes string, onConfirm, onDismiss func()) {
	fmt.Fprintln(t.out, boxStyle.Render(Message(version, releaseDate, releaseNotes)))

	ok, err := t.confirm("New version available", "Open the App Store page now?")
	if err != nil {
		log := logger.GetLogger()
		log.Warn().Err(err).Msg("Update prompt aborted")
		ok = false
	}
	if ok {
		if onConfirm != nil {
			onConfirm()
		}
		return
	}
	if onDismiss != nil {
		onDismiss()
	}
}

// Message formats the release details shown in the prompt
func Message(version, releaseDate, releaseNotes string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New version available"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Version:") + "\n" + valueStyle.Render(version) + "\n")
	b.WriteString(labelStyle.Render("Released:") + "\n" + valueStyle.Render(releaseDate) + "\n")
	b.WriteString("\n" + labelStyle.Render("Release notes:") + "\n" + valueStyle.Render(releaseNotes))
	return b.String()
}

func (t *Terminal) huhConfirm(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Update now").
				Negative("Later").
				Value(&ok),
		),
	).WithWidth(t.width)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
