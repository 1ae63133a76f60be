package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/satchel-app/satchel/internal/metrics"
	"github.com/satchel-app/satchel/internal/remote"
	"github.com/satchel-app/satchel/internal/store"
)

// The cart is local-owned: mutations never touch the network, so they
// work identically online and offline. Each mutation holds the user's
// lock so a concurrent checkout cannot observe a half-applied cart.

// AddToCart adds quantity of a product to the user's cart, merging into
// an existing line for the same product.
func (s *Syncer) AddToCart(ctx context.Context, userID, productID, qty int64) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.AddToCart(ctx, userID, productID, qty); err != nil {
		return localErr(OpCartMutate, err)
	}
	return nil
}

// SetCartQuantity overwrites the quantity of a cart line.
func (s *Syncer) SetCartQuantity(ctx context.Context, userID, productID, qty int64) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.SetCartQuantity(ctx, userID, productID, qty); err != nil {
		return localErr(OpCartMutate, err)
	}
	return nil
}

// RemoveFromCart deletes a cart line.
func (s *Syncer) RemoveFromCart(ctx context.Context, userID, productID int64) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.RemoveFromCart(ctx, userID, productID); err != nil {
		return localErr(OpCartMutate, err)
	}
	return nil
}

// ClearCart empties the user's cart.
func (s *Syncer) ClearCart(ctx context.Context, userID int64) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.ClearCart(ctx, userID); err != nil {
		return localErr(OpCartMutate, err)
	}
	return nil
}

// Cart returns the priced cart as of today, using the same effective
// price rule the catalog listing uses.
func (s *Syncer) Cart(ctx context.Context, userID int64) (store.CartView, error) {
	view, err := s.store.PricedCart(ctx, userID, s.now())
	if err != nil {
		return store.CartView{}, localErr(OpCartRead, err)
	}
	return view, nil
}

// Checkout converts the user's cart into an order. The remote service is
// the system of record for orders: the order is submitted upstream first
// and only a confirmed acceptance is committed locally, under the
// server-assigned id. Any failure before that point - empty cart, no
// connectivity, transport error mid-flight, remote rejection - leaves
// the cart exactly as it was.
//
// The user's lock is held for the whole sequence, so no cart mutation or
// second checkout can interleave between pricing and commit.
func (s *Syncer) Checkout(ctx context.Context, userID int64, payment string) (store.Order, error) {
	op := OpCheckout
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	day := s.now()
	cart, err := s.store.PricedCart(ctx, userID, day)
	if err != nil {
		metrics.Checkouts.WithLabelValues("error").Inc()
		return store.Order{}, localErr(op, err)
	}
	if len(cart.Lines) == 0 {
		metrics.Checkouts.WithLabelValues("empty_cart").Inc()
		return store.Order{}, opErrMsg(CodeEmptyCart, string(op), "cart is empty")
	}

	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return store.Order{}, err
	}
	if !useRemote {
		metrics.Checkouts.WithLabelValues("network_error").Inc()
		return store.Order{}, opErrMsg(CodeNetworkUnavailable, string(op), "no connectivity")
	}

	req := remote.CreateOrderRequest{
		Payment:    payment,
		TotalCents: cart.TotalCents,
	}
	for _, l := range cart.Lines {
		req.Lines = append(req.Lines, remote.OrderLinePayload{
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			PriceAtMoment: l.UnitCents,
		})
	}

	accepted, err := s.client.CreateOrder(ctx, req)
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		if remote.IsNetworkError(err) {
			metrics.Checkouts.WithLabelValues("network_error").Inc()
		} else {
			metrics.Checkouts.WithLabelValues("rejected").Inc()
		}
		return store.Order{}, remoteErr(op, err)
	}

	// Local commit under the server-assigned id: insert the order and
	// clear the cart in one transaction, freezing exactly the prices
	// that were submitted and accepted. A promotion edit landing during
	// the round trip cannot skew the mirror away from the server's
	// order.
	order, err := s.store.CommitCheckout(ctx, userID, payment, accepted.ID, day, cart)
	if err != nil {
		metrics.Checkouts.WithLabelValues("error").Inc()
		return store.Order{}, localErr(op, err)
	}

	metrics.Checkouts.WithLabelValues("ok").Inc()
	s.log.Info("checkout committed",
		zap.Int64("user_id", userID),
		zap.String("order_id", order.ID),
		zap.Int64("total_cents", order.TotalCents),
		zap.Int("lines", len(order.Lines)),
	)
	return order, nil
}

// Today returns the pricing day the syncer is operating on. Exposed so
// read-only callers price listings with the same clock checkout uses.
func (s *Syncer) Today() time.Time {
	return s.now()
}
