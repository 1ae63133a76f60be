package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Login authenticates with email and password. No bearer token is
// attached; the returned token becomes the credential for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, "login", http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, user UserPayload, password string) (AuthResponse, error) {
	var resp AuthResponse
	payload := struct {
		UserPayload
		Password string `json:"password"`
	}{UserPayload: user, Password: password}

	if err := c.do(ctx, "register", http.MethodPost, "/register", payload, &resp); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

// GetProfile fetches the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (UserPayload, error) {
	var u UserPayload
	if err := c.do(ctx, "get profile", http.MethodGet, "/profile", nil, &u); err != nil {
		return UserPayload{}, err
	}
	return u, nil
}

// UpdateProfile patches the authenticated user's profile and returns the
// service's view of the result.
func (c *Client) UpdateProfile(ctx context.Context, u UserPayload) (UserPayload, error) {
	var updated UserPayload
	if err := c.do(ctx, "update profile", http.MethodPatch, "/profile", u, &updated); err != nil {
		return UserPayload{}, err
	}
	return updated, nil
}

// ListProducts fetches the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]ProductPayload, error) {
	var products []ProductPayload
	if err := c.do(ctx, "list products", http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct adds a catalog entry (administrator only).
func (c *Client) CreateProduct(ctx context.Context, p ProductPayload) (ProductPayload, error) {
	var created ProductPayload
	if err := c.do(ctx, "create product", http.MethodPost, "/products", p, &created); err != nil {
		return ProductPayload{}, err
	}
	return created, nil
}

// UpdateProduct patches a catalog entry (administrator only).
func (c *Client) UpdateProduct(ctx context.Context, p ProductPayload) (ProductPayload, error) {
	var updated ProductPayload
	path := fmt.Sprintf("/products/%d", p.ID)
	if err := c.do(ctx, "update product", http.MethodPatch, path, p, &updated); err != nil {
		return ProductPayload{}, err
	}
	return updated, nil
}

// DeleteProduct removes a catalog entry (administrator only).
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, "delete product", http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}

// UploadProductImage uploads an image for a product as multipart form
// data and returns the opaque reference the service assigned.
func (c *Client) UploadProductImage(ctx context.Context, productID int64, fileName string, file io.Reader) (string, error) {
	var resp struct {
		ImageRef string `json:"image_ref"`
	}
	path := fmt.Sprintf("/products/%d/image", productID)
	err := c.doMultipart(ctx, "upload product image", path, "image", fileName, file, nil, &resp)
	if err != nil {
		return "", err
	}
	return resp.ImageRef, nil
}

// ListOrders fetches the authenticated user's order history. This is the
// authoritative list; the local cache mirrors it.
func (c *Client) ListOrders(ctx context.Context) ([]OrderPayload, error) {
	var orders []OrderPayload
	if err := c.do(ctx, "list orders", http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder submits an order. The server assigns the order id; the
// caller mirrors the response locally only after this succeeds.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (OrderPayload, error) {
	var created OrderPayload
	if err := c.do(ctx, "create order", http.MethodPost, "/orders", req, &created); err != nil {
		return OrderPayload{}, err
	}
	return created, nil
}

// UpdateOrderStatus advances an order's lifecycle state (administrator
// only). The service enforces that terminal orders stay terminal.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (OrderPayload, error) {
	var updated OrderPayload
	path := fmt.Sprintf("/orders/%s/status", id)
	body := map[string]string{"status": status}
	if err := c.do(ctx, "update order status", http.MethodPatch, path, body, &updated); err != nil {
		return OrderPayload{}, err
	}
	return updated, nil
}

// ListCards fetches the authenticated user's stored cards.
func (c *Client) ListCards(ctx context.Context) ([]CardPayload, error) {
	var cards []CardPayload
	if err := c.do(ctx, "list cards", http.MethodGet, "/cards", nil, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// AddCard stores a new card remotely. The service enforces the per-user
// card cap and rejects the request when it is exceeded.
func (c *Client) AddCard(ctx context.Context, req AddCardRequest) (CardPayload, error) {
	var created CardPayload
	if err := c.do(ctx, "add card", http.MethodPost, "/cards", req, &created); err != nil {
		return CardPayload{}, err
	}
	return created, nil
}

// DeleteCard removes a stored card.
func (c *Client) DeleteCard(ctx context.Context, id string) error {
	return c.do(ctx, "delete card", http.MethodDelete, "/cards/"+id, nil, nil)
}

// CreatePromotion publishes a promotion (administrator only).
func (c *Client) CreatePromotion(ctx context.Context, p PromotionPayload) (PromotionPayload, error) {
	var created PromotionPayload
	if err := c.do(ctx, "create promotion", http.MethodPost, "/promotions", p, &created); err != nil {
		return PromotionPayload{}, err
	}
	return created, nil
}

// UpdatePromotion patches a promotion (administrator only).
func (c *Client) UpdatePromotion(ctx context.Context, p PromotionPayload) (PromotionPayload, error) {
	var updated PromotionPayload
	path := fmt.Sprintf("/promotions/%d", p.ID)
	if err := c.do(ctx, "update promotion", http.MethodPatch, path, p, &updated); err != nil {
		return PromotionPayload{}, err
	}
	return updated, nil
}

// DeletePromotion removes a promotion (administrator only).
func (c *Client) DeletePromotion(ctx context.Context, id int64) error {
	return c.do(ctx, "delete promotion", http.MethodDelete, fmt.Sprintf("/promotions/%d", id), nil, nil)
}
