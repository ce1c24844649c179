package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foxzi/multiverse/internal/catalog"
	"github.com/foxzi/multiverse/internal/config"
	"github.com/foxzi/multiverse/internal/viewer"
	"github.com/foxzi/multiverse/internal/web/views"
)

const characterJSON = `{"id":1,"name":"Rick Sanchez","status":"Alive","species":"Human","type":"","gender":"Male",
"origin":{"name":"Earth (C-137)"},"location":{"name":"Citadel of Ricks"},
"episode":["https://rickandmortyapi.com/api/episode/1","https://rickandmortyapi.com/api/episode/51"]}`

func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/character/" && r.URL.Query().Get("status") == "dead":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"There is nothing here"}`)
		case r.URL.Path == "/character/":
			fmt.Fprintf(w, `{"info":{"count":1,"pages":1,"next":null,"prev":null},"results":[%s]}`, characterJSON)
		case r.URL.Path == "/character/1":
			fmt.Fprint(w, characterJSON)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"Character not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "multiverse.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func withConfig(t *testing.T, path string) {
	t.Helper()
	old := configFile
	configFile = path
	t.Cleanup(func() { configFile = old })
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, config.LoggingConfig{Level: "info", Format: "json"}).Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json logger wrote %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, config.LoggingConfig{Level: "error", Format: "text"}).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info record written at error level: %q", buf.String())
	}
}

func TestPrintPage(t *testing.T) {
	p, err := cliPrinter(config.Default(), "")
	if err != nil {
		t.Fatalf("cliPrinter() error = %v", err)
	}

	snap := viewer.Snapshot{
		State: viewer.Populated,
		Page: catalog.PageResult{
			Characters:  []catalog.Character{{ID: 7, Name: "Abradolf Lincler", Status: "unknown", Species: "Human", Gender: "Male"}},
			Count:       826,
			CurrentPage: 2,
			TotalPages:  42,
		},
	}

	var buf bytes.Buffer
	if err := printPage(&buf, p, snap); err != nil {
		t.Fatalf("printPage() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Abradolf Lincler", "Unknown", "Page 2 of 42", "826 characters"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := printPage(&buf, p, viewer.Snapshot{State: viewer.Empty}); err != nil {
		t.Fatalf("printPage(empty) error = %v", err)
	}
	if !strings.Contains(buf.String(), "No characters found.") {
		t.Errorf("empty output = %q", buf.String())
	}

	err = printPage(&buf, p, viewer.Snapshot{State: viewer.Failed, Error: "API unreachable"})
	if err == nil || err.Error() != "API unreachable" {
		t.Errorf("printPage(failed) error = %v", err)
	}
}

func TestPrintDetail(t *testing.T) {
	p, err := cliPrinter(config.Default(), "pt-BR")
	if err != nil {
		t.Fatalf("cliPrinter() error = %v", err)
	}

	d := views.CharacterDetail(catalog.Character{ID: 3, Name: "Summer Smith", Status: "Alive", Gender: "Female"})

	var buf bytes.Buffer
	if err := printDetail(&buf, p, d); err != nil {
		t.Fatalf("printDetail() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "#3 Summer Smith") {
		t.Errorf("output missing header:\n%s", out)
	}
	if strings.Contains(out, "detail.") {
		t.Errorf("untranslated key in output:\n%s", out)
	}
}

func TestCLIPrinterUnsupportedLanguage(t *testing.T) {
	if _, err := cliPrinter(config.Default(), "tlh"); err == nil {
		t.Error("cliPrinter() accepted an unsupported language")
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, "[....................] 0%"},
		{50, "[##########..........] 50%"},
		{100, "[####################] 100%"},
	}

	for _, tt := range tests {
		if got := progressBar(tt.percent); got != tt.want {
			t.Errorf("progressBar(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestRunList(t *testing.T) {
	srv := apiServer(t)
	withConfig(t, writeConfig(t, "api:\n  base_url: "+srv.URL+"\nlogging:\n  level: error\n"))

	old := listFilters
	t.Cleanup(func() { listFilters = old })

	tests := []struct {
		name    string
		filters catalog.FilterSet
		want    []string
	}{
		{"populated", catalog.FilterSet{Status: "alive", Page: 1}, []string{"?page=1&status=alive", "Rick Sanchez", "Page 1 of 1"}},
		{"empty", catalog.FilterSet{Status: "dead", Page: 0}, []string{"?page=1&status=dead", "No characters found."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listFilters = tt.filters

			var buf bytes.Buffer
			listCmd.SetOut(&buf)
			listCmd.SetErr(&buf)
			listCmd.SetContext(context.Background())

			if err := runList(listCmd, nil); err != nil {
				t.Fatalf("runList() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestRunShow(t *testing.T) {
	srv := apiServer(t)
	withConfig(t, writeConfig(t, "api:\n  base_url: "+srv.URL+"\n"))

	var buf bytes.Buffer
	showCmd.SetOut(&buf)
	showCmd.SetContext(context.Background())

	if err := runShow(showCmd, []string{"1"}); err != nil {
		t.Fatalf("runShow() error = %v", err)
	}
	for _, want := range []string{"#1 Rick Sanchez", "Earth (C-137)", "Citadel of Ricks", "51"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}

	if err := runShow(showCmd, []string{"2"}); err == nil {
		t.Error("runShow() succeeded for a missing character")
	}
	if err := runShow(showCmd, []string{"zero"}); err == nil {
		t.Error("runShow() accepted a non-numeric id")
	}
}

func TestRunCachePurge(t *testing.T) {
	withConfig(t, writeConfig(t, "cache:\n  enabled: true\n  path: "+filepath.Join(t.TempDir(), "cache.db")+"\n"))

	var buf bytes.Buffer
	cachePurgeCmd.SetOut(&buf)

	if err := runCachePurge(cachePurgeCmd, nil); err != nil {
		t.Fatalf("runCachePurge() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Deleted 0 cached responses") {
		t.Errorf("output = %q", buf.String())
	}

	withConfig(t, "")
	if err := runCachePurge(cachePurgeCmd, nil); err == nil {
		t.Error("runCachePurge() succeeded without a cache path")
	}
}

func TestRunConfigValidate(t *testing.T) {
	withConfig(t, writeConfig(t, "server:\n  listen_addr: \":9999\"\n"))

	var buf bytes.Buffer
	configValidateCmd.SetOut(&buf)

	if err := runConfigValidate(configValidateCmd, nil); err != nil {
		t.Fatalf("runConfigValidate() error = %v", err)
	}
	if !strings.Contains(buf.String(), ":9999") {
		t.Errorf("summary missing listen address:\n%s", buf.String())
	}

	withConfig(t, writeConfig(t, "api:\n  base_url: \"not a url\"\n"))
	if err := runConfigValidate(configValidateCmd, nil); err == nil {
		t.Error("runConfigValidate() accepted an invalid base_url")
	}
}
