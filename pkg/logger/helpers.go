package logger

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
)

const (
	IconSuccess = "✅"
	IconWarning = "⚠️"
	IconConfig  = "⚙️"
	IconRefresh = "🔄"
	IconDot     = "•"
)

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	defaultLogger.Info(IconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a progress message with a refresh icon
func Progress(args ...interface{}) {
	defaultLogger.Info(IconRefresh + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted progress message
func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

func out() (io.Writer, bool) {
	s := defaultSink()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer, s.noColor
}

// LogSection creates a visual section separator
func LogSection(title string) {
	w, noColor := out()
	line := strings.Repeat("=", 50)
	if noColor {
		_, _ = fmt.Fprintf(w, "%s\n%s\n%s\n", line, title, line)
		return
	}
	_, _ = prefixColor.Fprintln(w, line)
	_, _ = forced(color.FgCyan, color.Bold).Fprintln(w, title)
	_, _ = prefixColor.Fprintln(w, line)
}

// LogKeyValue logs a key-value pair with nice formatting
func LogKeyValue(key string, value interface{}) {
	w, noColor := out()
	if noColor {
		_, _ = fmt.Fprintf(w, "%s: %v\n", key, value)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %v\n", prefixColor.Sprint(key+":"), value)
}

// LogKeyValues logs multiple key-value pairs in key order
func LogKeyValues(pairs map[string]interface{}) {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		LogKeyValue(k, pairs[k])
	}
}
