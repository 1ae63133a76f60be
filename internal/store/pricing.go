package store

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateLayout is the calendar-date format used for promotion windows and
// order creation dates.
const DateLayout = "2006-01-02"

var pricePrinter = message.NewPrinter(language.English)

// FormatCents renders integer cents as a display price ("$1,234.50").
// Only read-boundary views use this; stored prices stay numeric.
func FormatCents(cents int64) string {
	return pricePrinter.Sprintf("$%d.%02d", cents/100, cents%100)
}

// ActiveOn reports whether the promotion applies on the given day:
// visible, and the day falls inside the inclusive [StartDate, EndDate]
// window. Comparison is lexicographic, valid for YYYY-MM-DD strings.
func (p Promotion) ActiveOn(day time.Time) bool {
	if !p.Visible {
		return false
	}
	d := day.Format(DateLayout)
	return p.StartDate <= d && d <= p.EndDate
}

// EffectivePriceCents returns the price to charge for a product on the
// given day: the promotion's price when an active, visible promotion
// exists, otherwise the base price.
//
// Every price surfaced anywhere (listing, cart, checkout) flows through
// this function; call sites must never reimplement the rule.
func EffectivePriceCents(p Product, promo *Promotion, day time.Time) int64 {
	if promo != nil && promo.ProductID == p.ID && promo.ActiveOn(day) {
		return promo.PriceCents
	}
	return p.PriceCents
}
