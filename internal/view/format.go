package view

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iliyamo/mission-dashboard/internal/model"
)

var fr = message.NewPrinter(language.French)

// Euros formats an amount the French way ("12 500 €", "450,50 €").  Whole
// amounts are printed without decimals.
func Euros(v float64) string {
	if v == math.Trunc(v) {
		return fr.Sprintf("%d €", int64(v))
	}
	return fr.Sprintf("%.2f €", v)
}

// Number formats a count or a duration with French separators.
func Number(v float64) string {
	if v == math.Trunc(v) {
		return fr.Sprintf("%d", int64(v))
	}
	return fr.Sprintf("%.1f", v)
}

// Date renders an ISO date or timestamp as DD/MM/YYYY.  Anything else is
// returned as is.
func Date(iso string) string {
	d := model.DateOnly(iso)
	t, err := time.Parse(model.DateLayout, d)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
