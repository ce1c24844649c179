package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/foxzi/multiverse/internal/web/i18n"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/?page=2", nil)
	req.Header.Set("HX-Request", "true")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{`"status":418`, `"query":"page=2"`, `"htmx":true`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestLanguage(t *testing.T) {
	bundle, err := i18n.LoadEmbedded("")
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}

	var got language.Tag
	handler := Language(bundle)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetLanguage(r, language.Und)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/?lang=pt-BR", nil))

	if got.String() != "pt-BR" {
		t.Errorf("language = %v, want pt-BR", got)
	}
	if rec.Header().Get("Content-Language") != "pt-BR" {
		t.Errorf("Content-Language = %q", rec.Header().Get("Content-Language"))
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Error("lang parameter was not persisted")
	}
}

func TestGetLanguageFallback(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := GetLanguage(req, language.English); got != language.English {
		t.Errorf("GetLanguage() = %v, want en", got)
	}
}
