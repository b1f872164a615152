// Package numfmt renders integers with locale-appropriate digit grouping.
package numfmt

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders an integer for display.
type Formatter interface {
	Format(n int) string
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(n int) string

// Format calls f(n).
func (f FormatterFunc) Format(n int) string { return f(n) }

// Locales lists the page languages numbers are formatted for.
var Locales = []string{"en", "ml", "hi", "bn"}

// Locale formats numbers using CLDR grouping rules for a language.
type Locale struct {
	tag language.Tag
}

// English groups thousands with commas ("50,000").
var English = &Locale{tag: language.English}

// New returns a Locale for a BCP 47 tag such as "en" or "hi-IN".
// Unparseable tags fall back to English.
func New(tag string) *Locale {
	t, err := language.Parse(tag)
	if err != nil {
		return English
	}
	return &Locale{tag: t}
}

// Tag returns the language tag.
func (l *Locale) Tag() language.Tag { return l.tag }

// Format implements Formatter.
func (l *Locale) Format(n int) string {
	// Printers are cheap and not documented as goroutine-safe.
	return message.NewPrinter(l.tag).Sprintf("%d", n)
}
