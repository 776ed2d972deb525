// Package translate renders assembler diagnostics through a locale-aware
// message printer.
package translate

import (
	"sync"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"tlog.app/go/tlog"
)

var (
	mu      sync.RWMutex
	printer *message.Printer
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		tlog.Printw("locale lookup failed", "err", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// SetLanguage replaces the printer used for diagnostics. An unparsable tag
// is reported and leaves the current printer in place.
func SetLanguage(lang string) (err error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return
	}

	mu.Lock()
	printer = message.NewPrinter(tag)
	mu.Unlock()

	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	mu.RLock()
	p := printer
	mu.RUnlock()

	return p.Sprintf(key, args...)
}
