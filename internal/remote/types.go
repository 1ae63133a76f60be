package remote

// UserPayload is the wire shape of a user as the service returns it.
type UserPayload struct {
	Email                string `json:"email"`
	DisplayName          string `json:"display_name"`
	Nickname             string `json:"nickname"`
	Phone                string `json:"phone"`
	Gender               string `json:"gender"`
	Country              string `json:"country"`
	Address              string `json:"address"`
	AvatarRef            string `json:"avatar_ref"`
	Role                 string `json:"role"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	CameraEnabled        bool   `json:"camera_enabled"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserPayload `json:"user"`
}

// ProductPayload is the wire shape of a catalog entry.
type ProductPayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	PriceCents  int64  `json:"price_cents"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageRef    string `json:"image_ref"`
	Visible     bool   `json:"visible"`
}

// PromotionPayload is the wire shape of a promotion.
type PromotionPayload struct {
	ID         int64  `json:"id"`
	ProductID  int64  `json:"product_id"`
	PriceCents int64  `json:"price_cents"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Visible    bool   `json:"visible"`
}

// OrderLinePayload is one line of a wire order.
type OrderLinePayload struct {
	ProductID     int64 `json:"product_id"`
	Quantity      int64 `json:"quantity"`
	PriceAtMoment int64 `json:"price_at_moment"`
}

// OrderPayload is the wire shape of an order.
type OrderPayload struct {
	ID           string             `json:"id"`
	TotalCents   int64              `json:"total_cents"`
	Status       string             `json:"status"`
	Payment      string             `json:"payment"`
	CreatedAt    string             `json:"created_at"`
	DeliveryTime string             `json:"delivery_time"`
	Notes        string             `json:"notes"`
	Lines        []OrderLinePayload `json:"lines"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	Payment    string             `json:"payment"`
	TotalCents int64              `json:"total_cents"`
	Lines      []OrderLinePayload `json:"lines"`
}

// CardPayload is the wire shape of a stored payment card. The service
// only ever returns the last four digits of the number.
type CardPayload struct {
	ID     string `json:"id"`
	Last4  string `json:"last4"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"`
	Brand  string `json:"brand"`
}

// AddCardRequest is the body of POST /cards. The full number is sent
// once and never stored locally.
type AddCardRequest struct {
	Number string `json:"number"`
	Holder string `json:"holder"`
	Expiry string `json:"expiry"`
	Brand  string `json:"brand"`
}
