// Package localize binds kaptinlin/go-i18n to errors.Localizer, translating
// SCIM error "detail" strings by scimType keyword.
package localize

import (
	"embed"

	"github.com/kaptinlin/go-i18n"

	"github.com/nielsvanzon/SCIM-SDK/errors"
)

//go:embed locales/*.json
var localesFS embed.FS

// NewBundle loads the embedded per-locale SCIM error message files.
func NewBundle() (*i18n.I18n, error) {
	bundle := i18n.NewBundle(
		i18n.WithDefaultLocale("en"),
		i18n.WithLocales("en", "fr"),
	)
	if err := bundle.LoadFS(localesFS, "locales/*.json"); err != nil {
		return nil, err
	}
	return bundle, nil
}

// Localizer adapts a kaptinlin/go-i18n *i18n.Localizer to errors.Localizer.
type Localizer struct {
	loc *i18n.Localizer
}

// New binds bundle to locale (e.g. "fr"), returning an errors.Localizer
// ready to assign to errors.ActiveLocalizer.
func New(bundle *i18n.I18n, locale string) *Localizer {
	return &Localizer{loc: bundle.NewLocalizer(locale)}
}

// Translate looks key up in the bound locale, falling back to fallback
// when the locale has no message for it.
func (l *Localizer) Translate(key, fallback string) string {
	if l == nil || l.loc == nil {
		return fallback
	}
	msg := l.loc.Get(key)
	if msg == "" {
		return fallback
	}
	return msg
}

var _ errors.Localizer = (*Localizer)(nil)
