package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Entry is one parsed line of the JSON log written by internal/logging.
type Entry struct {
	Time      time.Time
	Level     zerolog.Level
	Component string
	Message   string
	Error     string
	Fields    map[string]string
	Raw       string
}

// Lines returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file is empty, not an
// error: the log may not exist before the first write.
func Lines(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var all []string
		for scanner.Scan() {
			all = append(all, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return all, nil
	}

	ring := make([]string, maxLines)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if count < maxLines {
		return append([]string(nil), ring[:count]...), nil
	}
	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		lines = append(lines, ring[(next+i)%maxLines])
	}
	return lines, nil
}

// Read returns the last maxEntries parsed entries at or above minLevel.
func Read(path string, maxEntries int, minLevel zerolog.Level) ([]Entry, error) {
	lines, err := Lines(path, maxEntries)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e := Parse(line)
		if e.Level >= minLevel || e.Level == zerolog.NoLevel {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

var reserved = map[string]bool{
	zerolog.TimestampFieldName: true,
	zerolog.LevelFieldName:     true,
	zerolog.MessageFieldName:   true,
	zerolog.ErrorFieldName:     true,
	"component":                true,
}

// Parse decodes one zerolog JSON line. Lines that are not JSON come back
// with NoLevel and the text as Message.
func Parse(line string) Entry {
	e := Entry{Raw: line, Level: zerolog.NoLevel}
	if !gjson.Valid(line) {
		e.Message = strings.TrimSpace(line)
		return e
	}
	root := gjson.Parse(line)
	if !root.IsObject() {
		e.Message = strings.TrimSpace(line)
		return e
	}

	if lvl, err := zerolog.ParseLevel(root.Get(zerolog.LevelFieldName).String()); err == nil {
		e.Level = lvl
	}
	if ts := root.Get(zerolog.TimestampFieldName); ts.Exists() {
		if t, err := time.Parse(time.RFC3339Nano, ts.String()); err == nil {
			e.Time = t
		}
	}
	e.Message = root.Get(zerolog.MessageFieldName).String()
	e.Error = root.Get(zerolog.ErrorFieldName).String()
	e.Component = root.Get("component").String()

	root.ForEach(func(key, value gjson.Result) bool {
		if reserved[key.String()] {
			return true
		}
		if e.Fields == nil {
			e.Fields = map[string]string{}
		}
		e.Fields[key.String()] = value.String()
		return true
	})
	return e
}

var levelAbbrev = map[zerolog.Level]string{
	zerolog.TraceLevel: "TRC",
	zerolog.DebugLevel: "DBG",
	zerolog.InfoLevel:  "INF",
	zerolog.WarnLevel:  "WRN",
	zerolog.ErrorLevel: "ERR",
	zerolog.FatalLevel: "FTL",
	zerolog.PanicLevel: "PNC",
}

// Format renders the entry as a single display line:
// "15:04:05 WRN [probe] api unreachable detail=... error=...".
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if abbrev, ok := levelAbbrev[e.Level]; ok {
		b.WriteString(abbrev)
		b.WriteByte(' ')
	}
	if e.Component != "" {
		b.WriteString("[" + e.Component + "] ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" " + k + "=" + e.Fields[k])
	}
	if e.Error != "" {
		b.WriteString(" error=" + e.Error)
	}
	return b.String()
}
