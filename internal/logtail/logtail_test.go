package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeLines(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bodega.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLines(t *testing.T) {
	var all []string
	for i := 1; i <= 10; i++ {
		all = append(all, fmt.Sprintf("Line %d", i))
	}
	path := writeLines(t, all)

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, all},
		{"read all (negative)", -1, all},
		{"read partial (5)", 5, all[5:]},
		{"read exactly all (10)", 10, all},
		{"read more than exists (20)", 20, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lines(path, tt.maxLines)
			if err != nil {
				t.Fatalf("Lines() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lines() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLines_MissingFile(t *testing.T) {
	got, err := Lines(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Lines(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParse_ZerologLine(t *testing.T) {
	e := Parse(`{"level":"warn","component":"probe","detail":"El servidor no responde","attempt":3,"time":"2026-10-14T09:15:02-05:00","message":"api unreachable"}`)

	if e.Level != zerolog.WarnLevel || e.Component != "probe" || e.Message != "api unreachable" {
		t.Fatalf("Parse = %+v", e)
	}
	want := time.Date(2026, 10, 14, 14, 15, 2, 0, time.UTC)
	if !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	if !reflect.DeepEqual(e.Fields, map[string]string{"detail": "El servidor no responde", "attempt": "3"}) {
		t.Fatalf("Fields = %#v", e.Fields)
	}
	if got := e.Format(); !strings.HasSuffix(got, "WRN [probe] api unreachable attempt=3 detail=El servidor no responde") {
		t.Fatalf("Format = %q", got)
	}
}

func TestParse_PlainText(t *testing.T) {
	e := Parse("panic: runtime error")
	if e.Level != zerolog.NoLevel || e.Message != "panic: runtime error" {
		t.Fatalf("Parse = %+v", e)
	}
	if e.Format() != "panic: runtime error" {
		t.Fatalf("Format = %q", e.Format())
	}
}

func TestRead_FiltersByLevel(t *testing.T) {
	path := writeLines(t, []string{
		`{"level":"debug","message":"probe finished"}`,
		`{"level":"info","message":"read resolved"}`,
		``,
		`{"level":"error","error":"open session: denied","message":"save session"}`,
		`not json`,
	})

	entries, err := Read(path, 0, zerolog.InfoLevel)
	if err != nil {
		t.Fatalf("Read error = %v", err)
	}
	var msgs []string
	for _, e := range entries {
		msgs = append(msgs, e.Message)
	}
	want := []string{"read resolved", "save session", "not json"}
	if !reflect.DeepEqual(msgs, want) {
		t.Fatalf("messages = %v, want %v", msgs, want)
	}
	if got := entries[1].Format(); got != "ERR save session error=open session: denied" {
		t.Fatalf("Format = %q", got)
	}
}
