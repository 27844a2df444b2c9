// Package translate renders user-facing messages in the host locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:generate go tool gotext -srclang=en-US update -out=catalog.go -lang=en-US,de-DE

var (
	printer     *message.Printer
	printerOnce sync.Once
)

// Fallback is the tag used when the host reports no usable locale.
var Fallback = language.AmericanEnglish

func setup() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("i8080: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{Fallback.String()}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	printerOnce.Do(setup)
	return printer.Sprintf(key, args...)
}
