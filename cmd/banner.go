package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(10)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func init() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// bannerLine is one label/value row of the startup banner.
type bannerLine struct {
	label string
	value string
}

// printBanner writes the startup banner to w. It is the only output visible
// in the terminal during normal operation; structured logs go to the log file.
func printBanner(w io.Writer, version string, lines []bannerLine) {
	fmt.Fprintln(w, titleStyle.Render("emailnotify "+version))
	for _, l := range lines {
		fmt.Fprintln(w, labelStyle.Render(l.label)+" "+l.value)
	}
	fmt.Fprintln(w)
}

// renderStatus colors a terminal status for the send command.
func renderStatus(status string, ok bool) string {
	if ok {
		return okStyle.Render(status)
	}
	return failStyle.Render(status)
}
