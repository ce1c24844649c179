// Package i18n loads the UI message catalogs and resolves the language
// for each request.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

const (
	// LangParam is the query parameter used to select a language
	LangParam = "lang"
	// LangCookieName stores the user's language preference
	LangCookieName = "multiverse_lang"
	// BaseLocale must be present; other locales fall back to it
	BaseLocale = "en-US"
)

//go:embed locales/*/*.yaml
var embeddedFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds every loaded locale
type Bundle struct {
	builder  *catalog.Builder
	tags     []language.Tag
	matcher  language.Matcher
	fallback language.Tag
	keys     map[language.Tag]map[string]bool
}

// LanguageOption is one entry of the language switcher
type LanguageOption struct {
	Tag    string
	Label  string
	Active bool
}

// LoadEmbedded loads the catalogs compiled into the binary
func LoadEmbedded(defaultLocale string) (*Bundle, error) {
	return LoadFromFS(embeddedFS, defaultLocale)
}

// LoadFromFS loads locales/<locale>/*.yaml from fsys
func LoadFromFS(fsys fs.FS, defaultLocale string) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{
		builder: catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale))),
		keys:    make(map[language.Tag]map[string]bool),
	}

	for _, p := range paths {
		if err := b.addFile(fsys, p); err != nil {
			return nil, err
		}
	}

	base := language.MustParse(BaseLocale)
	if _, ok := b.keys[base]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	// Base locale first so the matcher falls back to it
	sort.SliceStable(b.tags, func(i, j int) bool {
		return b.tags[i] == base && b.tags[j] != base
	})

	b.fallback = base
	if defaultLocale != "" {
		tag, err := language.Parse(defaultLocale)
		if err != nil {
			return nil, fmt.Errorf("parse default locale %q: %w", defaultLocale, err)
		}
		if _, ok := b.keys[tag]; !ok {
			return nil, fmt.Errorf("default locale %s has no catalog", defaultLocale)
		}
		b.fallback = tag
	}

	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func (b *Bundle) addFile(fsys fs.FS, p string) error {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", p, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse catalog %s: %w", p, err)
	}

	dirLocale := path.Base(path.Dir(p))
	locale := strings.TrimSpace(file.Locale)
	if locale != dirLocale {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", p, locale, dirLocale)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("catalog %s: parse locale: %w", p, err)
	}

	keys, ok := b.keys[tag]
	if !ok {
		keys = make(map[string]bool)
		b.keys[tag] = keys
		b.tags = append(b.tags, tag)
	}

	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", p)
		}
		if keys[key] {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", p, key, locale)
		}
		if err := b.builder.SetString(tag, key, value); err != nil {
			return fmt.Errorf("catalog %s: key %q: %w", p, key, err)
		}
		keys[key] = true
	}

	return nil
}

// Supported returns the loaded locales, base locale first
func (b *Bundle) Supported() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// Default returns the configured default language
func (b *Bundle) Default() language.Tag {
	return b.fallback
}

// Printer returns a message printer for tag
func (b *Bundle) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(b.builder))
}

// Has reports whether tag defines key directly
func (b *Bundle) Has(tag language.Tag, key string) bool {
	return b.keys[tag][key]
}

// Match maps an arbitrary tag onto a supported one
func (b *Bundle) Match(tags ...language.Tag) language.Tag {
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.fallback
	}
	return b.tags[idx]
}

// Parse maps a raw language string onto a supported tag
func (b *Bundle) Parse(value string) (language.Tag, bool) {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Und, false
	}
	_, idx, conf := b.matcher.Match(tag)
	if conf == language.No {
		return language.Und, false
	}
	return b.tags[idx], true
}

// Resolve determines the language for r from the lang parameter, the
// preference cookie, Accept-Language, then the default. The bool is
// true when the lang parameter should be persisted as a cookie.
func (b *Bundle) Resolve(r *http.Request) (language.Tag, bool) {
	if value := r.URL.Query().Get(LangParam); value != "" {
		if tag, ok := b.Parse(value); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := b.Parse(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return b.Match(tags...), false
		}
	}

	return b.fallback, false
}

// SetLanguageCookie persists the selected language on the response
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Options returns the language switcher entries with active marked.
// Labels are message keys of the form "lang.<tag>".
func (b *Bundle) Options(active language.Tag) []LanguageOption {
	options := make([]LanguageOption, 0, len(b.tags))
	for _, tag := range b.tags {
		options = append(options, LanguageOption{
			Tag:    tag.String(),
			Label:  "lang." + tag.String(),
			Active: tag == active,
		})
	}
	return options
}
