package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"ytscribe/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

// statusWriter renders labelled status lines, colouring them on a terminal.
type statusWriter struct {
	out      io.Writer
	colorize bool
}

func newStatusWriter(out io.Writer) *statusWriter {
	return &statusWriter{out: out, colorize: shouldColorize(out)}
}

func (w *statusWriter) section(title string) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if w.colorize {
		line = ansiBlue + line + ansiReset
	}
	fmt.Fprintln(w.out, line)
}

func (w *statusWriter) line(label string, kind statusKind, message string) {
	fmt.Fprintln(w.out, renderStatusLine(label, kind, message, w.colorize))
}

func (w *statusWriter) result(r preflight.Result) {
	kind := statusError
	if r.Passed {
		kind = statusOK
	}
	w.line(r.Name, kind, r.Detail)
}

func (w *statusWriter) blank() {
	fmt.Fprintln(w.out)
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
