package syncer

import "context"

// Strategy names how an operation category reconciles the remote service
// with the local store.
type Strategy int

const (
	// RemoteThenMirror calls the remote service first when connectivity
	// is available and writes success into the local cache. Only a
	// network failure may divert to a local fallback, and only for
	// operations that have one.
	RemoteThenMirror Strategy = iota + 1

	// LocalOnly never touches the network.
	LocalOnly

	// RemoteOnly requires connectivity; offline attempts surface
	// CodeConnectivityRequired instead of stale or empty data.
	RemoteOnly
)

// Op identifies an operation category in the strategy table.
type Op string

const (
	OpLogin          Op = "login"
	OpRegister       Op = "register"
	OpProfileUpdate  Op = "profile update"
	OpProfileRefresh Op = "profile refresh"
	OpPreferences    Op = "preferences"
	OpCheckout       Op = "checkout"
	OpCartMutate     Op = "cart mutate"
	OpCartRead       Op = "cart read"
	OpPromotionEdit  Op = "promotion edit"
	OpPromotionRead  Op = "promotion read"
	OpCatalogRefresh Op = "catalog refresh"
	OpCatalogRead    Op = "catalog read"
	OpCatalogEdit    Op = "catalog edit"
	OpOrderHistory   Op = "order history"
	OpOrderStatus    Op = "order status"
	OpCardList       Op = "card list"
	OpCardEdit       Op = "card edit"
)

// strategies is the single decision table for online/offline branching.
// Every syncer method consults this instead of branching ad hoc, so the
// reconciliation policy is auditable in one place.
var strategies = map[Op]Strategy{
	OpLogin:          RemoteThenMirror, // the one op with an offline auth fallback
	OpRegister:       RemoteThenMirror,
	OpProfileUpdate:  RemoteThenMirror,
	OpPreferences:    RemoteThenMirror, // best-effort mirror: toggles are device-local first
	OpCheckout:       RemoteThenMirror,
	OpCatalogEdit:    RemoteThenMirror,
	OpPromotionEdit:  RemoteThenMirror, // falls back locally: promotions are local-owned
	OpCartMutate:     LocalOnly,
	OpCartRead:       LocalOnly,
	OpPromotionRead:  LocalOnly,
	OpCatalogRead:    LocalOnly,
	OpProfileRefresh: RemoteOnly,
	OpCatalogRefresh: RemoteOnly,
	OpOrderHistory:   RemoteOnly,
	OpOrderStatus:    RemoteThenMirror,
	OpCardList:       RemoteOnly,
	OpCardEdit:       RemoteOnly,
}

// strategyFor looks up the strategy for an operation.
func strategyFor(op Op) Strategy {
	if s, ok := strategies[op]; ok {
		return s
	}
	// Unknown operations never touch the network by accident.
	return LocalOnly
}

// planRemote applies op's table entry against the connectivity probe
// and reports whether the remote call should proceed. LocalOnly
// operations never probe. RemoteOnly operations fail offline with
// CodeConnectivityRequired; RemoteThenMirror operations report false so
// the caller takes its fallback, or fails itself when it has none.
func (s *Syncer) planRemote(ctx context.Context, op Op) (bool, error) {
	switch strategyFor(op) {
	case LocalOnly:
		return false, nil
	case RemoteOnly:
		if !s.online(ctx) {
			return false, opErrMsg(CodeConnectivityRequired, string(op), "no connectivity")
		}
		return true, nil
	default:
		return s.online(ctx), nil
	}
}
