package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/contest-provisioner/internal/domain"
	"github.com/spec-kit/contest-provisioner/internal/events"
)

// progressPrinter renders one line per processed record.
type progressPrinter struct {
	out  io.Writer
	ok   lipgloss.Style
	warn lipgloss.Style
	bad  lipgloss.Style
	dim  lipgloss.Style
	bold lipgloss.Style
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	r := lipgloss.NewRenderer(out)
	return &progressPrinter{
		out:  out,
		ok:   r.NewStyle().Foreground(lipgloss.Color("10")),
		warn: r.NewStyle().Foreground(lipgloss.Color("11")),
		bad:  r.NewStyle().Foreground(lipgloss.Color("9")),
		dim:  r.NewStyle().Faint(true),
		bold: r.NewStyle().Bold(true),
	}
}

// Subscribe attaches the printer to batch events.
func (p *progressPrinter) Subscribe(d events.Dispatcher) {
	d.Subscribe(events.EventBatchStarted, p.onStarted)
	d.Subscribe(events.EventRecordProcessed, p.onRecord)
}

func (p *progressPrinter) onStarted(_ context.Context, e events.Event) error {
	payload, ok := e.Payload.(events.BatchStartedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}
	_, err := fmt.Fprintf(p.out, "%s contest %s, %d records %s\n",
		p.bold.Render("provisioning"), payload.ContestID, payload.Total, p.dim.Render("run "+e.RunID))
	return err
}

func (p *progressPrinter) onRecord(_ context.Context, e events.Event) error {
	payload, ok := e.Payload.(events.RecordProcessedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", e.Payload)
	}
	_, err := fmt.Fprintln(p.out, p.formatRecord(payload))
	return err
}

func (p *progressPrinter) formatRecord(payload events.RecordProcessedPayload) string {
	o := payload.Outcome
	username := ""
	if o.Request != nil {
		username = o.Request.Username
	}
	width := len(fmt.Sprint(payload.Total))

	line := fmt.Sprintf("[%*d/%d] %s  team=%s", width, payload.Index, payload.Total, username, p.teamStatus(o))
	if o.TeamDiagnostic != "" {
		line += " " + p.dim.Render("("+o.TeamDiagnostic+")")
	}
	line += "  user=" + p.userStatus(o)
	if o.UserDiagnostic != "" {
		line += " " + p.dim.Render("("+o.UserDiagnostic+")")
	}
	return line
}

func (p *progressPrinter) teamStatus(o domain.ProvisionOutcome) string {
	text := string(o.TeamStatus)
	if o.TeamID != "" {
		text += ":" + o.TeamID
	}
	switch o.TeamStatus {
	case domain.TeamStatusCreated:
		return p.ok.Render(text)
	case domain.TeamStatusReused:
		return p.warn.Render(text)
	default:
		return p.bad.Render(text)
	}
}

func (p *progressPrinter) userStatus(o domain.ProvisionOutcome) string {
	text := string(o.UserStatus)
	if o.UserID != nil {
		text += ":" + *o.UserID
	}
	switch o.UserStatus {
	case domain.UserStatusCreated:
		return p.ok.Render(text)
	case domain.UserStatusDuplicateSkipped:
		return p.warn.Render(text)
	default:
		return p.bad.Render(text)
	}
}

func printSummary(out io.Writer, s domain.Summary, resultPath string) {
	r := lipgloss.NewRenderer(out)
	box := r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	label := r.NewStyle().Bold(true)
	body := fmt.Sprintf("%s %d\n%s %d\n%s %d\n%s %d\n%s %s",
		label.Render("total     "), s.Total,
		label.Render("created   "), s.Created,
		label.Render("duplicates"), s.Duplicates,
		label.Render("failures  "), s.Failures,
		label.Render("result    "), resultPath)
	fmt.Fprintln(out, box.Render(body))
}
