package logger

import (
	"github.com/rs/zerolog"
	"io"
)

var (
	level     = zerolog.Level(DefaultLogLevel)
	timestamp = true
	base      = newBase()
)

func newBase() zerolog.Logger {
	l := zerolog.New(eventWriter()).Level(level)
	if timestamp {
		l = l.With().Timestamp().Logger()
	}
	return l
}

func rebuild() {
	base = newBase()
}

func SetTimestamp(enabled bool) {
	timestamp = enabled
	rebuild()
}

// Trace starts a new message with trace level.
//
// You must call Msg on the returned event in order to send the event.
func Trace() *zerolog.Event {
	return base.Trace()
}

// Debug starts a new message with debug level.
func Debug() *zerolog.Event {
	return base.Debug()
}

// Info starts a new message with info level.
func Info() *zerolog.Event {
	return base.Info()
}

// Warning starts a new message with warn level.
func Warning() *zerolog.Event {
	return base.Warn()
}

// Error starts a new message with error level.
func Error() *zerolog.Event {
	return base.Error()
}

// Err starts a new message with error level with err as a field if not nil or
// with info level if err is nil.
func Err(err error) *zerolog.Event {
	return base.Err(err)
}

// Fatal starts a new message with fatal level. The os.Exit(1) function
// is called by the Msg method.
func Fatal() *zerolog.Event {
	return base.Fatal()
}

// Writer adapts the logger to APIs that expect an io.Writer, e.g.
// http.Server.ErrorLog.
func Writer() io.Writer {
	return base
}

// ForQuery returns a child logger whose events carry the query id, so lines
// from concurrent validation runs can be told apart.
func ForQuery(id string) zerolog.Logger {
	return base.With().Str("query", id).Logger()
}

// ForRule is like ForQuery with the rule type and group attached.
func ForRule(id, ruleType, group string) zerolog.Logger {
	return base.With().Str("query", id).Str("rule", ruleType).Str("group", group).Logger()
}
