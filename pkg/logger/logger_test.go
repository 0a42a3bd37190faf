package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_JSONWithServiceFields(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	log := Init(Options{Level: "debug", Output: &buf, Service: "mechshop-api", Env: "test"})
	log.Debug().Int64("ticket_id", 4).Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "mechshop-api" || entry["env"] != "test" || entry["message"] != "hello" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})
	l := Get()
	l.Info().Msg("x")

	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("expected output only on the first writer")
	}
}

func TestComponent_TagsEntries(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Output: &buf, Service: "mechshop-api"})
	c := Component("activity")
	c.Info().Msg("published")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "activity" || entry["service"] != "mechshop-api" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}
