// ABOUTME: Structured logger construction for the CLI, API and MCP server.
// ABOUTME: Wraps charmbracelet/log with level parsing and optional rotating file output.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params configures a logger.
type Params struct {
	Level  string
	Format string
	// File, when set, receives logs through a rotating writer instead of Output.
	File   string
	Output io.Writer
}

// New builds a logger from params. Output defaults to stderr so stdout
// stays free for command output and the MCP stdio transport.
func New(p Params) *log.Logger {
	var w io.Writer = os.Stderr
	if p.Output != nil {
		w = p.Output
	}
	if p.File != "" {
		w = &lumberjack.Logger{
			Filename: p.File,
			MaxSize:  10, // megabytes
			Compress: true,
		}
	}

	return log.NewWithOptions(w, log.Options{
		Level:           GetLevel(p.Level),
		Formatter:       GetFormatter(p.Format),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "fitlog",
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

func GetLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func GetFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
