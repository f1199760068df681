package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/prsync/internal/pullrequests"
	"github.com/temirov/prsync/internal/reconcile"
	"github.com/temirov/prsync/internal/utils"
)

const (
	openGlyphConstant               = "🟢"
	closedGlyphConstant             = "🔴"
	unknownGlyphConstant            = "⚪"
	pullRequestLineTemplateConstant = "%s %s - %s (%s)\n"
	actionLineTemplateConstant      = "%s\n"
	summaryLineTemplateConstant     = "%s %s\n"
	dryRunPrefixConstant            = "[dry-run] "
	summaryLabelConstant            = "Summary:"
	numberPrefixConstant            = "#"
)

var (
	colorCreate  = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"}
	colorUpdate  = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#3B82F6"}
	colorDelete  = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
)

// StatusPrinter writes per pull request status lines and the pass summary.
// Styling is applied only when the writer is a color-capable terminal. Safe for concurrent use.
type StatusPrinter struct {
	mutex        sync.Mutex
	writer       io.Writer
	numberStyle  lipgloss.Style
	authorStyle  lipgloss.Style
	createStyle  lipgloss.Style
	updateStyle  lipgloss.Style
	deleteStyle  lipgloss.Style
	dryRunStyle  lipgloss.Style
	summaryStyle lipgloss.Style
}

// NewStatusPrinter constructs a printer for writer. A nil writer discards output.
func NewStatusPrinter(writer io.Writer) *StatusPrinter {
	if writer == nil {
		writer = io.Discard
	}
	renderer := lipgloss.NewRenderer(writer)
	return &StatusPrinter{
		writer:       utils.NewFlushingWriter(writer),
		numberStyle:  renderer.NewStyle().Bold(true),
		authorStyle:  renderer.NewStyle().Foreground(colorMuted),
		createStyle:  renderer.NewStyle().Foreground(colorCreate),
		updateStyle:  renderer.NewStyle().Foreground(colorUpdate),
		deleteStyle:  renderer.NewStyle().Foreground(colorDelete),
		dryRunStyle:  renderer.NewStyle().Foreground(colorWarning),
		summaryStyle: renderer.NewStyle().Bold(true),
	}
}

// PrintPullRequest writes "<glyph> #<N> - <title> (<author>)" followed by one line per mutating
// action. The lines of one pull request are written together and never interleave with another's.
func (printer *StatusPrinter) PrintPullRequest(record pullrequests.Record, actions []reconcile.Action, dryRun bool) {
	var block strings.Builder
	block.WriteString(printer.formatPullRequest(record))
	for _, action := range actions {
		block.WriteString(printer.formatAction(action, dryRun))
	}
	printer.write(block.String())
}

// PrintSummary writes the end-of-pass counts.
func (printer *StatusPrinter) PrintSummary(summary reconcile.Summary) {
	printer.write(fmt.Sprintf(summaryLineTemplateConstant, printer.summaryStyle.Render(summaryLabelConstant), summary.String()))
}

func (printer *StatusPrinter) formatPullRequest(record pullrequests.Record) string {
	return fmt.Sprintf(
		pullRequestLineTemplateConstant,
		stateGlyph(record.State),
		printer.numberStyle.Render(numberPrefixConstant+strconv.Itoa(record.Number)),
		record.DisplayTitle(),
		printer.authorStyle.Render(record.DisplayAuthor()),
	)
}

// formatAction returns an empty string for NoOp actions.
func (printer *StatusPrinter) formatAction(action reconcile.Action, dryRun bool) string {
	if !action.Mutates() {
		return ""
	}
	description := printer.actionStyle(action.Kind).Render(action.Describe())
	if dryRun {
		description = printer.dryRunStyle.Render(dryRunPrefixConstant) + description
	}
	return fmt.Sprintf(actionLineTemplateConstant, description)
}

func (printer *StatusPrinter) actionStyle(kind reconcile.ActionKind) lipgloss.Style {
	switch kind {
	case reconcile.ActionCreate:
		return printer.createStyle
	case reconcile.ActionUpdate:
		return printer.updateStyle
	default:
		return printer.deleteStyle
	}
}

func (printer *StatusPrinter) write(line string) {
	printer.mutex.Lock()
	defer printer.mutex.Unlock()
	_, _ = io.WriteString(printer.writer, line)
}

func stateGlyph(state pullrequests.State) string {
	switch state {
	case pullrequests.StateOpen:
		return openGlyphConstant
	case pullrequests.StateClosed:
		return closedGlyphConstant
	default:
		return unknownGlyphConstant
	}
}
