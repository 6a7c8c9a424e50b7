package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hamed0406/netcheck/internal/domain"
)

const rule = "============================================================"

// Console prints a run for people. Colours are dropped automatically when
// w is not a terminal.
type Console struct {
	w        io.Writer
	title    lipgloss.Style
	subtitle lipgloss.Style
	bold     lipgloss.Style
	pass     lipgloss.Style
	fail     lipgloss.Style
	warn     lipgloss.Style
}

func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:        w,
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		subtitle: r.NewStyle().Foreground(lipgloss.Color("241")),
		bold:     r.NewStyle().Bold(true),
		pass:     r.NewStyle().Foreground(lipgloss.Color("10")),
		fail:     r.NewStyle().Foreground(lipgloss.Color("9")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

func (c *Console) Header(started time.Time) {
	fmt.Fprintln(c.w, rule)
	fmt.Fprintln(c.w, c.title.Render("INTERNET RESTRICTION CHECKER"))
	fmt.Fprintln(c.w, rule)
	fmt.Fprintln(c.w, c.subtitle.Render("Started at: "+started.Local().Format("2006-01-02 15:04:05")))
	fmt.Fprintln(c.w)
}

// Outcome prints one numbered probe line with its detail.
func (c *Console) Outcome(n int, o domain.Outcome) {
	icon := c.pass.Render("✓")
	if !o.Passed {
		icon = c.fail.Render("✗")
	}
	fmt.Fprintf(c.w, "  [%d] %s %s\n", n, icon, c.bold.Render(o.Name))
	if o.Detail != "" {
		fmt.Fprintf(c.w, "        %s\n", o.Detail)
	}
}

func (c *Console) Summary(r *domain.Report) {
	passed, total := r.Passed()

	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, rule)
	fmt.Fprintln(c.w, c.title.Render("SUMMARY"))
	fmt.Fprintln(c.w, rule)
	fmt.Fprintf(c.w, "Tests passed: %d/%d\n", passed, total)
	fmt.Fprintf(c.w, "Overall status: %s\n", c.statusStyle(r.OverallStatus).Render(r.OverallStatus.Title()))

	if len(r.Issues) > 0 {
		fmt.Fprintln(c.w)
		fmt.Fprintln(c.w, "Potential issues detected:")
		for _, issue := range r.Issues {
			fmt.Fprintf(c.w, "  - %s\n", issue)
		}
	} else {
		fmt.Fprintln(c.w)
		fmt.Fprintln(c.w, "No significant issues detected.")
	}
	fmt.Fprintln(c.w, rule)
}

// Report prints a complete run: header, every outcome, summary.
func (c *Console) Report(r *domain.Report) {
	c.Header(r.Timestamp)
	for i, o := range r.Outcomes {
		c.Outcome(i+1, o)
	}
	c.Summary(r)
}

func (c *Console) statusStyle(s domain.Status) lipgloss.Style {
	switch s {
	case domain.StatusClear:
		return c.pass
	case domain.StatusPartialRestriction:
		return c.warn
	case domain.StatusRestricted:
		return c.fail
	}
	return c.subtitle
}

// Plain is a one-paragraph text summary for notifications.
func Plain(r *domain.Report) string {
	passed, total := r.Passed()
	var b strings.Builder
	fmt.Fprintf(&b, "Overall status: %s (%d/%d tests passed)\n", r.OverallStatus.Title(), passed, total)
	fmt.Fprintf(&b, "Checked: %s\n", r.Timestamp.Format(time.RFC3339))
	for _, o := range r.Outcomes {
		if !o.Passed {
			fmt.Fprintf(&b, "- %s: %s\n", o.Name, o.Detail)
		}
	}
	return b.String()
}
