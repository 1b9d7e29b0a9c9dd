package logger

import "github.com/rs/zerolog"

type Level zerolog.Level

const (
	// DebugLevel defines debug log level.
	DebugLevel = Level(zerolog.DebugLevel)
	// InfoLevel defines info log level.
	InfoLevel = Level(zerolog.InfoLevel)
	// WarningLevel defines warn log level.
	WarningLevel = Level(zerolog.WarnLevel)
	// ErrorLevel defines error log level.
	ErrorLevel = Level(zerolog.ErrorLevel)
	// FatalLevel defines fatal log level.
	FatalLevel = Level(zerolog.FatalLevel)
	// NoLevel defines an absent log level.
	NoLevel = Level(zerolog.NoLevel)
	// Disabled disables the logger.
	Disabled = Level(zerolog.Disabled)
	// TraceLevel defines trace log level.
	TraceLevel = Level(zerolog.TraceLevel)
)

const DefaultLogLevel = WarningLevel

func LogLevel() Level {
	return Level(level)
}

func SetLogLevel(l Level) {
	level = zerolog.Level(l)
	rebuild()
}

// ParseLevel maps the names accepted by the -log flag to a Level.
func ParseLevel(name string) (Level, bool) {
	switch name {
	case "trace":
		return TraceLevel, true
	case "debug":
		return DebugLevel, true
	case "info":
		return InfoLevel, true
	case "warning", "warn":
		return WarningLevel, true
	case "error":
		return ErrorLevel, true
	case "none", "disabled":
		return Disabled, true
	}
	return NoLevel, false
}
