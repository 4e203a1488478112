// Package executor implements the query tagged union and the pipeline
// execution contract: queries run in order, each is independent (a
// failure does not abort the rest), and no lock is held across queries.
package executor

import (
	"github.com/ahnlich/ahnlich-go/internal/nonlinear"
	"github.com/ahnlich/ahnlich-go/internal/predicate"
	"github.com/ahnlich/ahnlich-go/internal/similarity"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// Query is implemented by every concrete query type the executor
// accepts. The marker method exists only to close the tagged union over
// this package's types.
type Query interface {
	isQuery()
}

type baseQuery struct{}

func (baseQuery) isQuery() {}

// PingQuery requests a liveness Pong response.
type PingQuery struct{ baseQuery }

// InfoServerQuery requests the server's ServerInfo.
type InfoServerQuery struct{ baseQuery }

// ListClientsQuery requests the list of currently connected sessions.
type ListClientsQuery struct{ baseQuery }

// ListStoresQuery requests a summary of every store in the catalog.
type ListStoresQuery struct{ baseQuery }

// CreateStoreQuery creates a new store.
type CreateStoreQuery struct {
	baseQuery
	Name          string
	Dimension     int
	Predicates    []string
	NonLinear     []nonlinear.Backend
	ErrorIfExists bool
}

// CreatePredIndexQuery declares predicate keys as indexed on a store.
type CreatePredIndexQuery struct {
	baseQuery
	Store string
	Keys  []string
}

// CreateNonLinearIndexQuery builds non-linear indices on a store.
type CreateNonLinearIndexQuery struct {
	baseQuery
	Store    string
	Backends []nonlinear.Backend
}

// DropPredIndexQuery drops predicate indices on a store.
type DropPredIndexQuery struct {
	baseQuery
	Store            string
	Keys             []string
	ErrorIfNotExists bool
}

// DropNonLinearIndexQuery drops non-linear indices on a store.
type DropNonLinearIndexQuery struct {
	baseQuery
	Store            string
	Backends         []nonlinear.Backend
	ErrorIfNotExists bool
}

// GetKeyQuery fetches entries by exact key vector.
type GetKeyQuery struct {
	baseQuery
	Store string
	Keys  []valuetype.Vector
}

// GetPredQuery fetches entries matching a predicate condition.
type GetPredQuery struct {
	baseQuery
	Store     string
	Condition *predicate.Condition
}

// GetSimNQuery fetches the top-N entries by similarity to a query vector.
// Index, when non-empty, names the specific non-linear backend the
// caller requires ("kdtree" or "hnsw"); a store with no matching built
// index returns UnknownIndex instead of silently scanning linearly.
type GetSimNQuery struct {
	baseQuery
	Store     string
	Query     valuetype.Vector
	N         int
	Algorithm similarity.Algorithm
	Index     nonlinear.Backend // empty selects automatically, per algorithm
	Condition *predicate.Condition // nil when unconditioned
}

// SetQuery inserts or updates entries in a store.
type SetQuery struct {
	baseQuery
	Store   string
	Entries []valuetype.Entry
}

// DelKeyQuery deletes entries by exact key vector.
type DelKeyQuery struct {
	baseQuery
	Store string
	Keys  []valuetype.Vector
}

// DelPredQuery deletes entries matching a predicate condition.
type DelPredQuery struct {
	baseQuery
	Store     string
	Condition *predicate.Condition
}

// DropStoreQuery removes a store entirely.
type DropStoreQuery struct {
	baseQuery
	Store            string
	ErrorIfNotExists bool
}

// PurgeStoresQuery drops every store.
type PurgeStoresQuery struct{ baseQuery }
