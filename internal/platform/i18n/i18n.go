package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundle        *i18n.Bundle
	loadErr       error
	loadOnce      sync.Once
	defaultLocale = "en"
)

type ctxKey struct{}

// Init loads the embedded locale files and sets the default locale. It is
// safe to call more than once; only the first call loads the bundle.
func Init(defLocale string) error {
	if defLocale != "" {
		defaultLocale = defLocale
	}
	loadOnce.Do(load)
	return loadErr
}

func load() {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		loadErr = fmt.Errorf("i18n: read locales dir: %w", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			loadErr = fmt.Errorf("i18n: read %s: %w", e.Name(), err)
			return
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			loadErr = fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
			return
		}
	}
	bundle = b
	slog.Info("i18n locales loaded", "files", len(entries), "default", defaultLocale)
}

// WithLocale returns a new context carrying the given locale string (e.g. "ko", "en").
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext returns the configured default locale if none is set.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return defaultLocale
}

// T translates a message ID using the locale from the context. Unknown IDs
// come back unchanged.
func T(ctx context.Context, messageID string, templateData ...map[string]any) string {
	loadOnce.Do(load)
	if bundle == nil {
		return messageID
	}
	l := i18n.NewLocalizer(bundle, LocaleFromContext(ctx), defaultLocale)

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(templateData) > 0 && templateData[0] != nil {
		cfg.TemplateData = templateData[0]
	}

	msg, err := l.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}
