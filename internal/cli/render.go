package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/satchel-app/satchel/internal/store"
)

// Text rendering for the human-facing output format. Monetary values
// arrive pre-formatted from the store's pricing helpers so the CLI and
// any other surface always print identical amounts.

func renderCatalog(views []store.ProductView) string {
	if len(views) == 0 {
		return "The catalog is empty. Run: satchel products refresh\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tCATEGORY\tPRICE")
	for _, v := range views {
		price := v.EffectivePrice
		if v.OnPromotion {
			price = fmt.Sprintf("%s (was %s)", v.EffectivePrice, v.BasePrice)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", v.ID, v.Title, v.Category, price)
	}
	w.Flush()
	return b.String()
}

func renderProduct(v store.ProductView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", v.Title)
	if v.Subtitle != "" {
		fmt.Fprintf(&b, "%s\n", v.Subtitle)
	}
	if v.OnPromotion {
		fmt.Fprintf(&b, "Price: %s (was %s)\n", v.EffectivePrice, v.BasePrice)
	} else {
		fmt.Fprintf(&b, "Price: %s\n", v.EffectivePrice)
	}
	fmt.Fprintf(&b, "Category: %s\n", v.Category)
	if v.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", v.Description)
	}
	return b.String()
}

func renderCart(cart store.CartView) string {
	if len(cart.Lines) == 0 {
		return "Your cart is empty.\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "QTY\tPRODUCT\tUNIT\tLINE")
	for _, l := range cart.Lines {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", l.Quantity, l.Title, l.UnitPrice, l.LinePrice)
	}
	w.Flush()
	fmt.Fprintf(&b, "Total: %s\n", cart.Total)
	return b.String()
}

func renderReceipt(order store.Order, products map[int64]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s (%s)\n", order.ID, order.Status)
	fmt.Fprintf(&b, "Placed: %s  Payment: %s\n", order.CreatedAt, order.Payment)
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, l := range order.Lines {
		title := products[l.ProductID]
		if title == "" {
			title = fmt.Sprintf("product %d", l.ProductID)
		}
		fmt.Fprintf(w, "  %d x %s\t%s\n", l.Quantity, title, store.FormatCents(l.PriceAtMoment*l.Quantity))
	}
	w.Flush()
	fmt.Fprintf(&b, "Total: %s\n", store.FormatCents(order.TotalCents))
	return b.String()
}

func renderOrders(orders []store.Order) string {
	if len(orders) == 0 {
		return "No orders yet.\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tDATE\tSTATUS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.ID, o.CreatedAt, o.Status, store.FormatCents(o.TotalCents))
	}
	w.Flush()
	return b.String()
}

func renderCards(cards []store.Card) string {
	if len(cards) == 0 {
		return "No stored cards.\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBRAND\tNUMBER\tEXPIRY\tHOLDER")
	for _, c := range cards {
		fmt.Fprintf(w, "%s\t%s\t**** %s\t%s\t%s\n", c.ID, c.Brand, c.Last4, c.Expiry, c.Holder)
	}
	w.Flush()
	return b.String()
}

func renderPromotions(promos []store.Promotion, products map[int64]string) string {
	if len(promos) == 0 {
		return "No active promotions.\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tPROMO PRICE\tFROM\tTO")
	for _, p := range promos {
		title := products[p.ProductID]
		if title == "" {
			title = fmt.Sprintf("product %d", p.ProductID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", title, store.FormatCents(p.PriceCents), p.StartDate, p.EndDate)
	}
	w.Flush()
	return b.String()
}

func renderProfile(u store.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Email: %s\n", u.Email)
	fmt.Fprintf(&b, "Name: %s\n", u.Profile.DisplayName)
	if u.Profile.Nickname != "" {
		fmt.Fprintf(&b, "Nickname: %s\n", u.Profile.Nickname)
	}
	if u.Profile.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", u.Profile.Phone)
	}
	if u.Profile.Country != "" {
		fmt.Fprintf(&b, "Country: %s\n", u.Profile.Country)
	}
	if u.Profile.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", u.Profile.Address)
	}
	fmt.Fprintf(&b, "Role: %s\n", u.Role)
	fmt.Fprintf(&b, "Notifications: %s  Camera: %s\n",
		onOff(u.Prefs.NotificationsEnabled), onOff(u.Prefs.CameraEnabled))
	return b.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// productTitles builds the id-to-title map used by receipt rendering.
func productTitles(products []store.Product) map[int64]string {
	titles := make(map[int64]string, len(products))
	for _, p := range products {
		titles[p.ID] = p.Title
	}
	return titles
}
