package syncer

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/satchel-app/satchel/internal/metrics"
	"github.com/satchel-app/satchel/internal/remote"
	"github.com/satchel-app/satchel/internal/store"
)

// RefreshOrders pulls the authoritative order history and replaces the
// user's local mirror wholesale. Remote-only: history shown to the user
// must be the server's, so an offline attempt fails instead of quietly
// serving a stale mirror as if it were fresh.
func (s *Syncer) RefreshOrders(ctx context.Context, userID int64) error {
	op := OpOrderHistory
	if _, err := s.planRemote(ctx, op); err != nil {
		return err
	}

	orders, err := s.client.ListOrders(ctx)
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return remoteErr(op, err)
	}

	mirrored := make([]store.Order, 0, len(orders))
	for _, o := range orders {
		mirrored = append(mirrored, orderFromPayload(userID, o))
	}
	if err := s.store.MirrorOrders(ctx, userID, mirrored); err != nil {
		return localErr(op, err)
	}
	s.log.Info("order history refreshed",
		zap.Int64("user_id", userID), zap.Int("orders", len(mirrored)))
	return nil
}

// Orders returns the locally mirrored order history for a user.
func (s *Syncer) Orders(ctx context.Context, userID int64) ([]store.Order, error) {
	orders, err := s.store.ListOrdersForUser(ctx, userID)
	if err != nil {
		return nil, localErr(OpOrderHistory, err)
	}
	return orders, nil
}

// Order returns one mirrored order with formatted totals.
func (s *Syncer) Order(ctx context.Context, id string) (store.OrderView, error) {
	view, err := s.store.OrderViewByID(ctx, id)
	if err != nil {
		return store.OrderView{}, localErr(OpOrderHistory, err)
	}
	return view, nil
}

// AllOrders returns every mirrored order. Administrator surface.
func (s *Syncer) AllOrders(ctx context.Context) ([]store.Order, error) {
	orders, err := s.store.ListAllOrders(ctx)
	if err != nil {
		return nil, localErr(OpOrderHistory, err)
	}
	return orders, nil
}

// UpdateOrderStatus advances an order's lifecycle state upstream and
// mirrors the accepted result. Administrator only; the service and the
// local store both refuse to move an order out of a terminal state.
func (s *Syncer) UpdateOrderStatus(ctx context.Context, orderID string, status store.OrderStatus) error {
	op := OpOrderStatus
	if !status.Valid() {
		return opErrMsg(CodeRejected, string(op), "unknown status "+string(status))
	}
	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return err
	}
	if !useRemote {
		return opErrMsg(CodeNetworkUnavailable, string(op), "no connectivity")
	}

	accepted, err := s.client.UpdateOrderStatus(ctx, orderID, string(status))
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return remoteErr(op, err)
	}

	err = s.store.UpdateOrderStatus(ctx, orderID, store.OrderStatus(accepted.Status))
	if errors.Is(err, store.ErrNotFound) {
		// The order was never mirrored here; the remote change stands.
		return nil
	}
	if err != nil {
		return localErr(op, err)
	}
	return nil
}

// AnnotateOrder updates delivery time and notes on a mirrored order.
// Allowed even after the order reaches a terminal status.
func (s *Syncer) AnnotateOrder(ctx context.Context, orderID, deliveryTime, notes string) error {
	if err := s.store.AnnotateOrder(ctx, orderID, deliveryTime, notes); err != nil {
		return localErr(OpOrderStatus, err)
	}
	return nil
}

// RefreshCards pulls the stored cards and replaces the local mirror.
// Remote-only, like order history: card data shown must be the
// server's view.
func (s *Syncer) RefreshCards(ctx context.Context, userID int64) error {
	op := OpCardList
	if _, err := s.planRemote(ctx, op); err != nil {
		return err
	}

	cards, err := s.client.ListCards(ctx)
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return remoteErr(op, err)
	}

	mirrored := make([]store.Card, 0, len(cards))
	for _, c := range cards {
		mirrored = append(mirrored, cardFromPayload(userID, c))
	}
	if err := s.store.ReplaceCards(ctx, userID, mirrored); err != nil {
		return localErr(op, err)
	}
	return nil
}

// Cards returns the locally mirrored cards for a user.
func (s *Syncer) Cards(ctx context.Context, userID int64) ([]store.Card, error) {
	cards, err := s.store.ListCards(ctx, userID)
	if err != nil {
		return nil, localErr(OpCardList, err)
	}
	return cards, nil
}

// AddCard stores a card remotely and mirrors the masked result. The full
// number travels upstream once and is never written locally. The service
// enforces the per-user card cap; its rejection surfaces as a limit
// error.
func (s *Syncer) AddCard(ctx context.Context, userID int64, req remote.AddCardRequest) (store.Card, error) {
	op := OpCardEdit
	if _, err := s.planRemote(ctx, op); err != nil {
		return store.Card{}, err
	}

	accepted, err := s.client.AddCard(ctx, req)
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		var apiErr *remote.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
			return store.Card{}, opErrMsg(CodeLimitExceeded, string(op), apiErr.Message)
		}
		return store.Card{}, remoteErr(op, err)
	}

	if err := s.RefreshCards(ctx, userID); err != nil {
		return store.Card{}, err
	}
	return cardFromPayload(userID, accepted), nil
}

// RemoveCard deletes a stored card remotely and refreshes the mirror.
func (s *Syncer) RemoveCard(ctx context.Context, userID int64, cardID string) error {
	op := OpCardEdit
	if _, err := s.planRemote(ctx, op); err != nil {
		return err
	}

	err := s.client.DeleteCard(ctx, cardID)
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return remoteErr(op, err)
	}
	return s.RefreshCards(ctx, userID)
}
