package store

import "time"

// Role identifies a user's privilege level.
type Role string

const (
	RoleCustomer      Role = "customer"
	RoleAdministrator Role = "administrator"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
// Completed and cancelled orders may still receive notes/delivery-time
// touch-ups, but never another status change.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderInProgress, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// SessionKind distinguishes a server-issued session from a synthetic
// offline marker.
type SessionKind string

const (
	SessionOnline  SessionKind = "online"
	SessionOffline SessionKind = "offline"
)

// User is a mirrored identity. Credential holds a bcrypt hash of the
// password that last authenticated successfully against the remote
// service; it exists solely to make offline login possible.
type User struct {
	ID         int64
	Email      string
	Credential string
	Profile    Profile
	Role       Role
	Prefs      Preferences
	CreatedAt  time.Time
}

// Profile is the editable identity surface of a user.
type Profile struct {
	DisplayName string
	Nickname    string
	Phone       string
	Gender      string
	Country     string
	Address     string
	AvatarRef   string
}

// Preferences are local toggles mirrored to the remote profile when online.
type Preferences struct {
	NotificationsEnabled bool
	CameraEnabled        bool
}

// Product is a mirrored catalog entry. PriceCents is the base price;
// the effective price (promotion-aware) is derived at read time.
type Product struct {
	ID          int64
	Title       string
	Subtitle    string
	PriceCents  int64
	Description string
	Category    string
	ImageRef    string
	Visible     bool
}

// Promotion discounts a single product within an inclusive date window.
type Promotion struct {
	ID         int64
	ProductID  int64
	PriceCents int64
	StartDate  string // YYYY-MM-DD, inclusive
	EndDate    string // YYYY-MM-DD, inclusive
	Visible    bool
}

// Order is a mirrored purchase record. Once Status is terminal only
// DeliveryTime and Notes may change.
type Order struct {
	ID           string
	UserID       int64
	TotalCents   int64
	Status       OrderStatus
	Payment      string
	CreatedAt    string // YYYY-MM-DD
	DeliveryTime string
	Notes        string
	Lines        []OrderLine
}

// OrderLine references a product with its unit price frozen at checkout.
type OrderLine struct {
	ID            int64
	OrderID       string
	ProductID     int64
	Quantity      int64
	PriceAtMoment int64
}

// CartLine is local-owned; at most one line per (user, product).
type CartLine struct {
	ID        int64
	UserID    int64
	ProductID int64
	Quantity  int64
}

// Card is a read-through mirror of a remotely stored payment card.
// Only the last four digits are ever retained.
type Card struct {
	ID     string
	UserID int64
	Last4  string
	Holder string
	Expiry string
	Brand  string
}

// Session is the persisted authentication marker.
type Session struct {
	ID        string
	UserID    int64
	Token     string
	Kind      SessionKind
	CreatedAt time.Time
}
