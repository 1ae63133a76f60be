package syncer

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/satchel-app/satchel/internal/metrics"
	"github.com/satchel-app/satchel/internal/remote"
	"github.com/satchel-app/satchel/internal/store"
)

// RefreshCatalog pulls the remote catalog and mirrors it by server id.
// Remote-only: without connectivity it fails rather than pretending a
// stale mirror is fresh. The stale mirror stays readable through
// Products regardless.
func (s *Syncer) RefreshCatalog(ctx context.Context) error {
	op := OpCatalogRefresh
	if _, err := s.planRemote(ctx, op); err != nil {
		return err
	}

	products, err := s.client.ListProducts(ctx)
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return remoteErr(op, err)
	}

	mirrored := make([]store.Product, 0, len(products))
	for _, p := range products {
		mirrored = append(mirrored, productFromPayload(p))
	}
	if err := s.store.MirrorProducts(ctx, mirrored); err != nil {
		return localErr(op, err)
	}
	s.log.Info("catalog refreshed", zap.Int("products", len(mirrored)))
	return nil
}

// Products returns the mirrored catalog with effective prices resolved
// for today. Always served from the local store; callers wanting fresh
// data call RefreshCatalog first.
func (s *Syncer) Products(ctx context.Context) ([]store.ProductView, error) {
	views, err := s.store.ListProductViews(ctx, s.now())
	if err != nil {
		return nil, localErr(OpCatalogRead, err)
	}
	return views, nil
}

// Product returns one mirrored product with its effective price.
func (s *Syncer) Product(ctx context.Context, id int64) (store.ProductView, error) {
	view, err := s.store.ProductViewByID(ctx, id, s.now())
	if err != nil {
		return store.ProductView{}, localErr(OpCatalogRead, err)
	}
	return view, nil
}

// CreateProduct publishes a catalog entry remotely and mirrors the
// accepted result under the server-assigned id. Administrator only on
// the service side; catalog edits have no offline path.
func (s *Syncer) CreateProduct(ctx context.Context, p store.Product) (store.Product, error) {
	op := OpCatalogEdit
	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return store.Product{}, err
	}
	if !useRemote {
		return store.Product{}, opErrMsg(CodeNetworkUnavailable, string(op), "no connectivity")
	}

	accepted, err := s.client.CreateProduct(ctx, payloadFromProduct(p))
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return store.Product{}, remoteErr(op, err)
	}

	created := productFromPayload(accepted)
	if err := s.store.MirrorProducts(ctx, []store.Product{created}); err != nil {
		return store.Product{}, localErr(op, err)
	}
	return created, nil
}

// UpdateProduct pushes a catalog edit remotely and mirrors the result.
func (s *Syncer) UpdateProduct(ctx context.Context, p store.Product) error {
	op := OpCatalogEdit
	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return err
	}
	if !useRemote {
		return opErrMsg(CodeNetworkUnavailable, string(op), "no connectivity")
	}

	accepted, err := s.client.UpdateProduct(ctx, payloadFromProduct(p))
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return remoteErr(op, err)
	}
	if err := s.store.MirrorProducts(ctx, []store.Product{productFromPayload(accepted)}); err != nil {
		return localErr(op, err)
	}
	return nil
}

// DeleteProduct removes a catalog entry remotely and from the mirror.
// Locally the row is soft-hidden when order lines still reference it.
func (s *Syncer) DeleteProduct(ctx context.Context, id int64) error {
	op := OpCatalogEdit
	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return err
	}
	if !useRemote {
		return opErrMsg(CodeNetworkUnavailable, string(op), "no connectivity")
	}

	err = s.client.DeleteProduct(ctx, id)
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return remoteErr(op, err)
	}

	err = s.store.DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Never mirrored locally; the remote delete already succeeded.
		return nil
	}
	if err != nil {
		return localErr(op, err)
	}
	return nil
}

// UploadProductImage streams an image upstream and records the returned
// reference on the mirrored product.
func (s *Syncer) UploadProductImage(ctx context.Context, productID int64, fileName string, file io.Reader) (string, error) {
	op := OpCatalogEdit
	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return "", err
	}
	if !useRemote {
		return "", opErrMsg(CodeNetworkUnavailable, string(op), "no connectivity")
	}

	ref, err := s.client.UploadProductImage(ctx, productID, fileName, file)
	metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
	if err != nil {
		return "", remoteErr(op, err)
	}

	p, err := s.store.ProductByID(ctx, productID)
	if err != nil {
		return "", localErr(op, err)
	}
	p.ImageRef = ref
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return "", localErr(op, err)
	}
	return ref, nil
}

// UpsertPromotion creates or replaces the promotion for a product.
// Promotions are local-owned: the local write is the commit, and the
// remote publish is best-effort - a transport failure is logged and
// tolerated, a remote rejection aborts.
func (s *Syncer) UpsertPromotion(ctx context.Context, promo store.Promotion) error {
	op := OpPromotionEdit

	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return err
	}
	if useRemote {
		// A product that already carries a promotion gets a patch under
		// the existing id; otherwise the promotion is created fresh.
		payload := payloadFromPromotion(promo)
		publish := s.client.CreatePromotion
		existing, lookupErr := s.store.PromotionForProduct(ctx, promo.ProductID)
		switch {
		case lookupErr == nil:
			payload.ID = existing.ID
			publish = s.client.UpdatePromotion
		case !errors.Is(lookupErr, store.ErrNotFound):
			return localErr(op, lookupErr)
		}

		_, err := publish(ctx, payload)
		metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
		switch {
		case err == nil:
		case remote.IsNetworkError(err):
			s.log.Warn("promotion publish unreachable, keeping local change", zap.Error(err))
			metrics.OfflineFallbacks.WithLabelValues(string(op)).Inc()
		default:
			return remoteErr(op, err)
		}
	}

	err = s.store.UpsertPromotion(ctx, promo)
	if errors.Is(err, store.ErrPromotionPrice) {
		return opErrMsg(CodeRejected, string(op), "promotion price must be below the base price")
	}
	if err != nil {
		return localErr(op, err)
	}
	return nil
}

// DeletePromotion removes a product's promotion locally, with a
// best-effort remote retraction.
func (s *Syncer) DeletePromotion(ctx context.Context, productID int64) error {
	op := OpPromotionEdit

	promo, err := s.store.PromotionForProduct(ctx, productID)
	if err != nil {
		return localErr(op, err)
	}

	useRemote, err := s.planRemote(ctx, op)
	if err != nil {
		return err
	}
	if useRemote {
		err := s.client.DeletePromotion(ctx, promo.ID)
		metrics.ObserveRemoteCall(string(op), err, remote.IsNetworkError)
		switch {
		case err == nil:
		case remote.IsNetworkError(err):
			s.log.Warn("promotion retraction unreachable, removing locally", zap.Error(err))
			metrics.OfflineFallbacks.WithLabelValues(string(op)).Inc()
		default:
			return remoteErr(op, err)
		}
	}

	if err := s.store.DeletePromotion(ctx, productID); err != nil {
		return localErr(op, err)
	}
	return nil
}

// ActivePromotions lists promotions whose window covers today.
func (s *Syncer) ActivePromotions(ctx context.Context) ([]store.Promotion, error) {
	promos, err := s.store.ListActivePromotions(ctx, s.now())
	if err != nil {
		return nil, localErr(OpPromotionRead, err)
	}
	return promos, nil
}
