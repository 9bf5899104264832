package templates

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Thousands formats n with comma thousands separators.
func Thousands(n int64) string {
	return printer.Sprintf("%d", n)
}

// Pesos formats n as a Mexican peso amount.
func Pesos(n int64) string {
	return "MX $ " + Thousands(n)
}
