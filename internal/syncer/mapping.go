package syncer

import (
	"github.com/satchel-app/satchel/internal/remote"
	"github.com/satchel-app/satchel/internal/store"
)

// The remote wire shapes and the store rows are kept separate types on
// purpose; these helpers are the only place the two meet.

func userFromPayload(p remote.UserPayload) store.User {
	role := store.RoleCustomer
	if p.Role == string(store.RoleAdministrator) {
		role = store.RoleAdministrator
	}
	return store.User{
		Email: p.Email,
		Profile: store.Profile{
			DisplayName: p.DisplayName,
			Nickname:    p.Nickname,
			Phone:       p.Phone,
			Gender:      p.Gender,
			Country:     p.Country,
			Address:     p.Address,
			AvatarRef:   p.AvatarRef,
		},
		Role: role,
		Prefs: store.Preferences{
			NotificationsEnabled: p.NotificationsEnabled,
			CameraEnabled:        p.CameraEnabled,
		},
	}
}

func payloadFromProfile(email string, p store.Profile, prefs store.Preferences) remote.UserPayload {
	return remote.UserPayload{
		Email:                email,
		DisplayName:          p.DisplayName,
		Nickname:             p.Nickname,
		Phone:                p.Phone,
		Gender:               p.Gender,
		Country:              p.Country,
		Address:              p.Address,
		AvatarRef:            p.AvatarRef,
		NotificationsEnabled: prefs.NotificationsEnabled,
		CameraEnabled:        prefs.CameraEnabled,
	}
}

func productFromPayload(p remote.ProductPayload) store.Product {
	return store.Product{
		ID:          p.ID,
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		PriceCents:  p.PriceCents,
		Description: p.Description,
		Category:    p.Category,
		ImageRef:    p.ImageRef,
		Visible:     p.Visible,
	}
}

func payloadFromProduct(p store.Product) remote.ProductPayload {
	return remote.ProductPayload{
		ID:          p.ID,
		Title:       p.Title,
		Subtitle:    p.Subtitle,
		PriceCents:  p.PriceCents,
		Description: p.Description,
		Category:    p.Category,
		ImageRef:    p.ImageRef,
		Visible:     p.Visible,
	}
}

func payloadFromPromotion(p store.Promotion) remote.PromotionPayload {
	return remote.PromotionPayload{
		ID:         p.ID,
		ProductID:  p.ProductID,
		PriceCents: p.PriceCents,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		Visible:    p.Visible,
	}
}

func orderFromPayload(userID int64, p remote.OrderPayload) store.Order {
	o := store.Order{
		ID:           p.ID,
		UserID:       userID,
		TotalCents:   p.TotalCents,
		Status:       store.OrderStatus(p.Status),
		Payment:      p.Payment,
		CreatedAt:    p.CreatedAt,
		DeliveryTime: p.DeliveryTime,
		Notes:        p.Notes,
	}
	for _, l := range p.Lines {
		o.Lines = append(o.Lines, store.OrderLine{
			OrderID:       p.ID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			PriceAtMoment: l.PriceAtMoment,
		})
	}
	return o
}

func cardFromPayload(userID int64, p remote.CardPayload) store.Card {
	return store.Card{
		ID:     p.ID,
		UserID: userID,
		Last4:  p.Last4,
		Holder: p.Holder,
		Expiry: p.Expiry,
		Brand:  p.Brand,
	}
}
