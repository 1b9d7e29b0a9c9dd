package logger

import (
	"fmt"
	"github.com/rs/zerolog"
	"io"
	"os"
	"time"
)

// Format selects how log events are written.
type Format int

const (
	// FormatConsole writes colored, human readable lines.
	FormatConsole Format = iota
	// FormatJSON writes one JSON object per event.
	FormatJSON
)

// Documents such as reports go to output; log events go to errorOutput, so
// that a report on stdout stays parseable whatever the log level.
var (
	output      io.Writer = os.Stdout
	errorOutput io.Writer = os.Stderr
	format                = FormatConsole
	noColor               = os.Getenv("TERM") == ""
)

const (
	colorRed = iota + 31
	colorGreen
	colorYellow
	colorBlue
	colorMagenta
	colorCyan
	colorBold = 1
)

func eventWriter() io.Writer {
	if format == FormatJSON {
		return errorOutput
	}
	return zerolog.ConsoleWriter{
		Out:         errorOutput,
		TimeFormat:  time.RFC3339,
		NoColor:     noColor,
		FormatLevel: levelFormatter(noColor),
	}
}

func colorize(s interface{}, c int, disabled bool) string {
	if disabled {
		return fmt.Sprint(s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

var levelNames = map[string]struct {
	name  string
	color int
	bold  bool
}{
	"trace": {"Trace", colorCyan, false},
	"debug": {"Debug", colorBlue, false},
	"info":  {"Info", colorGreen, false},
	"warn":  {"Warning", colorYellow, false},
	"error": {"Error", colorRed, true},
	"fatal": {"Fatal", colorMagenta, true},
	"panic": {"Panic", colorMagenta, true},
}

func levelFormatter(disabled bool) zerolog.Formatter {
	return func(i interface{}) string {
		level, _ := i.(string)
		n, ok := levelNames[level]
		if !ok {
			return "[" + colorize("???", colorBold, disabled) + "]"
		}
		l := colorize(n.name, n.color, disabled)
		if n.bold {
			l = colorize(l, colorBold, disabled)
		}
		return "[" + l + "]"
	}
}

func Color() bool {
	return !noColor
}

func SetColor(color bool) {
	noColor = !color
	rebuild()
}

func SetFormat(f Format) {
	format = f
	rebuild()
}

// ParseFormat accepts "console" and "json".
func ParseFormat(name string) (Format, bool) {
	switch name {
	case "console", "text":
		return FormatConsole, true
	case "json":
		return FormatJSON, true
	}
	return FormatConsole, false
}

// Output is where documents are printed.
func Output() io.Writer {
	return output
}

func SetOutput(w io.Writer) {
	output = w
}

// ErrorOutput is where log events are written.
func ErrorOutput() io.Writer {
	return errorOutput
}

func SetErrorOutput(w io.Writer) {
	errorOutput = w
	rebuild()
}
