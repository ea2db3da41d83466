package diag

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sources caches file contents by name so the formatter can render the
// caret-underline window without re-reading a file per diagnostic.
type Sources struct {
	files map[string][]string
}

func NewSources() *Sources {
	return &Sources{files: make(map[string][]string)}
}

func (s *Sources) Add(file, content string) {
	s.files[file] = strings.Split(content, "\n")
}

func (s *Sources) lines(file string) []string {
	if ls, ok := s.files[file]; ok {
		return ls
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil
	}
	ls := strings.Split(string(data), "\n")
	s.files[file] = ls
	return ls
}

// Formatter renders *Error values as the fixed
// "<file>:<line>:<col>: <msg>" text plus a source window with a caret
// underline, mirroring the original compiler's print_message.
type Formatter struct {
	Sources *Sources
	Color   bool
}

func NewFormatter(sources *Sources, color bool) *Formatter {
	if sources == nil {
		sources = NewSources()
	}
	return &Formatter{Sources: sources, Color: color}
}

func (f *Formatter) Format(w io.Writer, err *Error) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()
	f.format(bw, err)
}

func (f *Formatter) format(w *bufio.Writer, err *Error) {
	if err == nil {
		return
	}
	if err.Kind == Many {
		for _, sub := range err.Errors {
			f.format(w, sub)
		}
		return
	}

	header := err.Msg
	if header == "" {
		header = err.Kind.String()
	}
	if err.HasSpan {
		fmt.Fprintf(w, "%s:%d:%d: %s\n", err.Span.File, err.Span.Start.Line, err.Span.Start.Col, header)
		f.printWindow(w, err.Span)
	} else {
		fmt.Fprintf(w, "%s\n", header)
	}
}

// printWindow prints up to three lines of context before the error
// line, the error line itself, a caret-underline marking the span, and
// up to three lines of context after the error line.
func (f *Formatter) printWindow(w *bufio.Writer, span Span) {
	lines := f.Sources.lines(span.File)
	if lines == nil {
		return
	}
	lineIdx := span.Start.Line - 1
	if lineIdx < 0 || lineIdx >= len(lines) {
		return
	}

	first := lineIdx - 3
	if first < 0 {
		first = 0
	}
	for i := first; i < lineIdx; i++ {
		fmt.Fprintf(w, "  %s\n", lines[i])
	}

	errLine := lines[lineIdx]
	fmt.Fprintf(w, "  %s\n", errLine)

	width := span.End.Col - span.Start.Col
	if span.End.Line != span.Start.Line || width < 1 {
		width = 1
	}
	pad := strings.Repeat(" ", span.Start.Col-1)
	caret := strings.Repeat("^", width)
	if f.Color {
		fmt.Fprintf(w, "  %s\x1b[31m%s\x1b[0m\n", pad, caret)
	} else {
		fmt.Fprintf(w, "  %s%s\n", pad, caret)
	}

	for i := lineIdx + 1; i <= lineIdx+3 && i < len(lines); i++ {
		fmt.Fprintf(w, "  %s\n", lines[i])
	}
}
