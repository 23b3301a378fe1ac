package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/edgecheck/edgecheck-go/internal/diagnostics"
	"github.com/edgecheck/edgecheck-go/internal/finding"
)

// Styles for different parts of the output
var (
	// Color detection using termenv (respects NO_COLOR, CLICOLOR_FORCE, terminal detection)
	envColors = termenv.EnvColorProfile() != termenv.Ascii

	// Finding code style
	codeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red

	// Message style
	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")) // White

	// File location style
	fileLocStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")) // Light gray

	// Line number style
	lineNumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray

	// Separator style
	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")) // Darker gray

	// Marker style for affected lines
	markerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red

	// Summary style
	summaryStyle = lipgloss.NewStyle().
			Bold(true)

	// Severity styles
	severityStyles = map[finding.Severity]lipgloss.Style{
		finding.SeverityError: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		finding.SeverityWarning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")), // Orange
		finding.SeverityInfo: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")), // Blue
		finding.SeverityHint: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245")), // Gray
	}
)

// TextOptions configures the text reporter output.
type TextOptions struct {
	// Color enables/disables colored output. Default: auto-detect.
	Color *bool

	// ShowSource shows source code snippets. Default: true.
	ShowSource bool
}

// DefaultTextOptions returns sensible defaults for text output.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Color:      nil, // auto-detect
		ShowSource: true,
	}
}

// TextReporter formats annotations as styled text output.
type TextReporter struct {
	w     io.Writer
	opts  TextOptions
	color bool
}

// NewTextReporter creates a new text reporter writing to w.
func NewTextReporter(w io.Writer, opts TextOptions) *TextReporter {
	r := &TextReporter{w: w, opts: opts}
	r.color = r.detectColor()
	return r
}

// detectColor decides whether to use colors: explicit option wins,
// otherwise require both a color-capable environment and a TTY writer.
func (r *TextReporter) detectColor() bool {
	if r.opts.Color != nil {
		return *r.opts.Color
	}
	if !envColors {
		return false
	}
	if f, ok := r.w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// Report writes annotations to the writer.
func (r *TextReporter) Report(annotations []diagnostics.Annotation, sources map[string][]byte, metadata ReportMetadata) error {
	sorted := SortAnnotations(annotations)

	for _, a := range sorted {
		if err := r.printAnnotation(a, sources[a.File]); err != nil {
			return err
		}
	}

	return r.printSummary(sorted, metadata)
}

// printAnnotation formats a single annotation.
func (r *TextReporter) printAnnotation(a diagnostics.Annotation, source []byte) error {
	sevStyle, ok := severityStyles[a.Severity]
	if !ok {
		sevStyle = severityStyles[finding.SeverityWarning]
	}

	// Header line: SEVERITY: CODE
	sevLabel := strings.ToUpper(a.Severity.String())
	var header string
	if r.color {
		header = fmt.Sprintf("\n%s %s",
			sevStyle.Render(sevLabel+":"),
			codeStyle.Render(a.Code))
	} else {
		header = fmt.Sprintf("\n%s: %s", sevLabel, a.Code)
	}
	fmt.Fprintln(r.w, header)

	// Message
	if r.color {
		fmt.Fprintln(r.w, messageStyle.Render(a.Message))
	} else {
		fmt.Fprintln(r.w, a.Message)
	}

	// Source snippet
	if r.opts.ShowSource && len(source) > 0 {
		r.printSource(a, source)
	}

	return nil
}

// printSource renders the source code snippet around the annotated line.
func (r *TextReporter) printSource(a diagnostics.Annotation, source []byte) {
	lines := strings.Split(string(source), "\n")

	target := a.Line
	if target < 1 || target > len(lines) {
		return
	}

	// 2 lines of context on each side
	start := target - 2
	if start < 1 {
		start = 1
	}
	end := target + 2
	if end > len(lines) {
		end = len(lines)
	}

	fmt.Fprintln(r.w)
	if r.color {
		fmt.Fprintln(r.w, fileLocStyle.Render(fmt.Sprintf("%s:%d", a.File, target)))
		fmt.Fprintln(r.w, separatorStyle.Render("────────────────────"))
	} else {
		fmt.Fprintf(r.w, "%s:%d\n", a.File, target)
		fmt.Fprintln(r.w, "--------------------")
	}

	for i := start; i <= end; i++ {
		lineContent := strings.TrimSuffix(lines[i-1], "\r") // Trim CRLF to avoid artifacts

		var lineNum string
		if r.color {
			lineNum = lineNumStyle.Render(fmt.Sprintf(" %3d │", i))
		} else {
			lineNum = fmt.Sprintf(" %3d |", i)
		}

		marker := "   "
		if i == target {
			if r.color {
				marker = markerStyle.Render(">>>")
			} else {
				marker = ">>>"
			}
		}

		fmt.Fprintf(r.w, "%s %s %s\n", lineNum, marker, lineContent)
	}

	if r.color {
		fmt.Fprintln(r.w, separatorStyle.Render("────────────────────"))
	} else {
		fmt.Fprintln(r.w, "--------------------")
	}
}

// printSummary writes a one-line count summary after all annotations.
func (r *TextReporter) printSummary(annotations []diagnostics.Annotation, metadata ReportMetadata) error {
	var errors, warnings, infos, hints int
	files := make(map[string]struct{})
	for _, a := range annotations {
		files[a.File] = struct{}{}
		switch a.Severity {
		case finding.SeverityError:
			errors++
		case finding.SeverityWarning:
			warnings++
		case finding.SeverityInfo:
			infos++
		case finding.SeverityHint:
			hints++
		}
	}

	scanned := metadata.FilesScanned
	if scanned < len(files) {
		scanned = len(files)
	}

	var line string
	if len(annotations) == 0 {
		line = fmt.Sprintf("\nNo findings in %d file(s).", scanned)
	} else {
		line = fmt.Sprintf("\n%d finding(s) in %d of %d file(s): %d error(s), %d warning(s), %d info, %d hint(s).",
			len(annotations), len(files), scanned, errors, warnings, infos, hints)
	}

	if r.color {
		fmt.Fprintln(r.w, summaryStyle.Render(line))
	} else {
		fmt.Fprintln(r.w, line)
	}
	return nil
}
