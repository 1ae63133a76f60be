// Package store implements the local, offline-capable relational store
// backing the satchel data layer.
//
// The store is the single source of truth for local-owned entities (cart
// lines, sessions) and a cache for server-owned entities (users, products,
// orders, cards). It owns schema creation, seeding, all CRUD primitives,
// and the checkout transaction that atomically promotes a cart into an
// order.
//
// Design principles:
//   - SQLite with WAL mode, single-writer connection pool
//   - Stored representation stays normalized (prices as integer cents,
//     image refs as opaque strings); denormalization happens only in the
//     *View read shapes
//   - Every mutating call either fully applies or returns an error;
//     multi-row writes go through a single transaction
//   - Effective pricing (promotion-aware) is computed in exactly one
//     place and shared by listing, cart, and checkout paths
package store
