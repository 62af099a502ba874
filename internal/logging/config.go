package logging

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "CMDMON_LOG_LEVEL"
	EnvLogTimestamp = "CMDMON_LOG_TIMESTAMP"
	EnvLogNoColor   = "CMDMON_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

var (
	configureOnce sync.Once
	logger        zerolog.Logger
)

// Logger returns the process-wide logger, configuring it with
// ProfileRuntime defaults on first call if Configure hasn't run yet.
func Logger() zerolog.Logger {
	ConfigureRuntime()
	return logger
}

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

// Configure builds the process-wide zerolog.Logger exactly once.
func Configure(profile Profile) {
	configureOnce.Do(func() {
		level, timestamp := defaultsFor(profile)
		level = applyLevelOverride(level)
		timestamp = applyBoolOverride(EnvLogTimestamp, timestamp)
		noColor := applyBoolOverride(EnvLogNoColor, false)

		writer := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: noColor}
		if timestamp {
			writer.TimeFormat = time.RFC3339
		} else {
			writer.PartsExclude = []string{zerolog.TimestampFieldName}
		}

		logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	})
}

func defaultsFor(profile Profile) (zerolog.Level, bool) {
	if profile == ProfileTest {
		return zerolog.DebugLevel, false
	}
	return zerolog.InfoLevel, true
}

func applyLevelOverride(fallback zerolog.Level) zerolog.Level {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		return lvl
	}
	return fallback
}

func applyBoolOverride(envVar string, fallback bool) bool {
	if v, ok := parseBool(os.Getenv(envVar)); ok {
		return v
	}
	return fallback
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
