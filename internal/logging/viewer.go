package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

// LogEntry is one parsed line of the JSON log.
type LogEntry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Msg     string         `json:"msg"`
	Attrs   map[string]any `json:"-"`
	Raw     string         `json:"-"`
	IsValid bool           `json:"-"`
}

// ViewerConfig holds the display filters for `cosim logs`.
type ViewerConfig struct {
	Level   string
	Pattern *regexp.Regexp
	NoColor bool
}

// Viewer reads, filters and renders log entries.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
}

func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{config: cfg, out: out}
}

// Tail returns the entries among the last n lines of the file that pass
// the configured filters.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Keep only the trailing n lines while scanning, the file itself can
	// be much larger than what we show.
	ring := make([]string, n)
	total := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // attribute payloads can be long
	for scanner.Scan() {
		ring[total%n] = scanner.Text()
		total++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	window := total
	if window > n {
		window = n
	}

	var entries []LogEntry
	for i := total - window; i < total; i++ {
		entry := v.decode(ring[i%n])
		if v.keep(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Follow streams entries appended to the file into out until ctx is
// cancelled. It polls rather than using platform file watchers.
func (v *Viewer) Follow(ctx context.Context, path string, out chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(file)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if !v.drain(ctx, reader, out) {
				return nil
			}
		}
	}
}

// drain forwards every complete line currently available. It reports
// false when the context was cancelled mid-send.
func (v *Viewer) drain(ctx context.Context, reader *bufio.Reader, out chan<- LogEntry) bool {
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return true // wait for more data
		}

		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			continue
		}
		entry := v.decode(line)
		if !v.keep(entry) {
			continue
		}

		select {
		case out <- entry:
		case <-ctx.Done():
			return false
		}
	}
}

// FormatEntry renders one entry as a single display line. Lines that
// never parsed come back verbatim. Attributes print in key order so the
// output is stable.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		return entry.Raw
	}

	var attrs string
	if len(entry.Attrs) > 0 {
		keys := make([]string, 0, len(entry.Attrs))
		for k := range entry.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, entry.Attrs[k])
		}
		attrs = " " + strings.Join(parts, " ")
	}

	return fmt.Sprintf("%s %s %s%s",
		entry.Time.Format("15:04:05.000"), v.levelTag(entry.Level), entry.Msg, attrs)
}

// Print writes the formatted entries to the viewer's output.
func (v *Viewer) Print(entries []LogEntry) {
	for _, e := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(e))
	}
}

// decode parses a JSON log line. Unparseable lines come back with
// IsValid false and only Raw set.
func (v *Viewer) decode(line string) LogEntry {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return LogEntry{Raw: line}
	}

	entry := LogEntry{Raw: line, IsValid: true, Attrs: make(map[string]any)}
	for key, val := range fields {
		switch key {
		case "time":
			if s, ok := val.(string); ok {
				if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
					entry.Time = ts
				}
			}
		case "level":
			entry.Level, _ = val.(string)
		case "msg":
			entry.Msg, _ = val.(string)
		default:
			entry.Attrs[key] = val
		}
	}
	return entry
}

// keep reports whether an entry passes the level and pattern filters.
func (v *Viewer) keep(entry LogEntry) bool {
	if v.config.Level != "" && LevelFromString(entry.Level) < LevelFromString(v.config.Level) {
		return false
	}
	if v.config.Pattern != nil && !v.config.Pattern.MatchString(entry.Raw) {
		return false
	}
	return true
}

var levelColors = map[string]string{
	"debug":   "\033[90m",
	"info":    "\033[32m",
	"warn":    "\033[33m",
	"warning": "\033[33m",
	"error":   "\033[31m",
}

// levelTag renders the level as a fixed-width, optionally colored tag.
func (v *Viewer) levelTag(level string) string {
	tag := strings.ToUpper(level)
	if len(tag) > 5 {
		tag = tag[:5]
	}
	tag = fmt.Sprintf("%-5s", tag)

	color, known := levelColors[strings.ToLower(level)]
	if !known || v.config.NoColor {
		return tag
	}
	return color + tag + "\033[0m"
}
