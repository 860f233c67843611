package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/layout"
	"github.com/rubiojr/cinegrid/pkg/render"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 0, 2)

	featuredStyle = cardStyle.
			BorderForeground(lipgloss.Color("214")).
			Border(lipgloss.ThickBorder())

	largeStyle = cardStyle.
			BorderForeground(lipgloss.Color("86"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	platformStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32")).
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("32")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))
)

// formatItem renders one title as a terminal card. Featured and large
// slots get a heavier border and the overview.
func formatItem(it catalog.Item, role layout.Role, favorite bool) string {
	var b strings.Builder

	name := it.Title
	if favorite {
		name = "♥ " + name
	}
	b.WriteString(headerStyle.Render(name))
	b.WriteString("\n")

	meta := fmt.Sprintf("%s · ★ %s · %s · %s", it.Kind.Label(), it.RatingLabel(), it.Year(), it.Key())
	b.WriteString(metaStyle.Render(meta))
	if it.HasPlatform() {
		b.WriteString(" ")
		b.WriteString(platformStyle.Render(strings.ToUpper(it.Platform)))
	}

	style := cardStyle
	switch role {
	case layout.Featured:
		style = featuredStyle
	case layout.Large:
		style = largeStyle
	}
	if role != layout.Standard && it.Overview != "" {
		b.WriteString("\n\n")
		b.WriteString(render.Truncate(it.Overview, 240))
	}
	return style.Render(b.String())
}

// formatItems renders a listing with the layout roles of ctx.
func formatItems(heading string, items []catalog.Item, ctx layout.Context, favs map[catalog.Key]bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(noDataStyle.Render("No titles found."))
		b.WriteString("\n")
		return b.String()
	}

	for _, slot := range layout.Assign(len(items), ctx) {
		it := items[slot.Index]
		b.WriteString(formatItem(it, slot.Role, favs[it.Key()]))
		b.WriteString("\n")
	}
	return b.String()
}

// formatTime formats a time relative to now or as an absolute date
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	// If it's within the last day, show relative time
	if diff < 24*time.Hour {
		if diff < time.Hour {
			minutes := int(diff.Minutes())
			if minutes < 1 {
				return "just now"
			}
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		hours := int(diff.Hours())
		return fmt.Sprintf("%d hours ago", hours)
	}

	// If it's within the last week, show days ago
	if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d days ago", days)
	}

	// Otherwise show the date
	if t.Year() == now.Year() {
		return t.Format("Jan 2, 15:04")
	}
	return t.Format("Jan 2, 2006")
}

// printOutput pages long output on a terminal.
func printOutput(content string, noPager bool) error {
	if noPager || !isTerminal() {
		fmt.Print(content)
		return nil
	}
	return displayWithPager(content)
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// displayWithPager displays content using a pager
func displayWithPager(content string) error {
	pagerCmd := os.Getenv("PAGER")
	if pagerCmd == "" {
		for _, pager := range []string{"less", "more"} {
			if _, err := exec.LookPath(pager); err == nil {
				pagerCmd = pager
				break
			}
		}
	}

	if pagerCmd == "" {
		fmt.Print(content)
		return nil
	}

	var args []string
	if strings.Contains(pagerCmd, "less") {
		args = []string{"-R", "-S", "-F", "-X"}
	}

	cmd := exec.Command(pagerCmd, args...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
