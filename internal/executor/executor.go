package executor

import (
	"context"

	"github.com/ahnlich/ahnlich-go/internal/apierr"
	"github.com/ahnlich/ahnlich-go/internal/catalog"
	"github.com/ahnlich/ahnlich-go/internal/session"
	"github.com/ahnlich/ahnlich-go/internal/store"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
	"github.com/ahnlich/ahnlich-go/pkg/version"
)

// Executor dispatches queries against the catalog and session registry.
// It holds no lock of its own across queries; each dispatched operation
// acquires and releases whatever locks it needs inside the catalog or
// store it touches, per the pipeline's execution contract.
type Executor struct {
	catalog    *catalog.Catalog
	sessions   *session.Manager
	address    string
	maxClients int
	pool       *workerPool
}

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithWorkerPoolCapacity overrides the default GOMAXPROCS worker pool size.
func WithWorkerPoolCapacity(capacity int) Option {
	return func(e *Executor) { e.pool = newWorkerPool(capacity) }
}

// New creates an Executor over cat and sessions, reporting address and
// maxClients in InfoServer responses.
func New(cat *catalog.Catalog, sessions *session.Manager, address string, maxClients int, opts ...Option) *Executor {
	e := &Executor{
		catalog:    cat,
		sessions:   sessions,
		address:    address,
		maxClients: maxClients,
		pool:       newWorkerPool(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunPipeline executes queries in order, collecting one Result per
// query. A failing query does not abort the rest; the returned slice
// always has the same length as queries.
func (e *Executor) RunPipeline(ctx context.Context, queries []Query) []Result {
	results := make([]Result, len(queries))
	for i, q := range queries {
		if ctx.Err() != nil {
			results[i] = errResult(apierr.New(apierr.CodeCancelled, "pipeline cancelled", ctx.Err()))
			continue
		}
		results[i] = e.Execute(ctx, q)
	}
	return results
}

// Execute dispatches a single query and returns its Result.
func (e *Executor) Execute(ctx context.Context, q Query) Result {
	switch query := q.(type) {
	case PingQuery:
		return ok(KindPong)

	case InfoServerQuery:
		info := valuetype.ServerInfo{
			Address:   e.address,
			Version:   version.Version,
			Type:      valuetype.ServerTypeDatabase,
			Limit:     e.maxClients,
			Remaining: e.maxClients - e.sessions.Count(),
		}
		r := ok(KindServerInfo)
		r.ServerInfo = info
		return r

	case ListClientsQuery:
		clients := make([]valuetype.ConnectedClient, 0, e.sessions.Count())
		for _, s := range e.sessions.List() {
			clients = append(clients, s.ToConnectedClient())
		}
		r := ok(KindClients)
		r.Clients = clients
		return r

	case ListStoresQuery:
		r := ok(KindStores)
		r.Stores = e.catalog.ListStores()
		return r

	case CreateStoreQuery:
		if err := e.catalog.CreateStore(query.Name, query.Dimension, query.Predicates, query.NonLinear, query.ErrorIfExists); err != nil {
			return errResult(err)
		}
		return ok(KindUnit)

	case CreatePredIndexQuery:
		return e.withStore(query.Store, func(s *store.Store) Result {
			created, err := s.CreatePredIndex(query.Keys)
			return countResult(KindCreateIndex, created, err)
		})

	case CreateNonLinearIndexQuery:
		return e.withStore(query.Store, func(s *store.Store) Result {
			var created int
			err := e.pool.run(ctx, func() error {
				var innerErr error
				created, innerErr = s.CreateNonLinearIndex(query.Backends)
				return innerErr
			})
			return countResult(KindCreateIndex, created, err)
		})

	case DropPredIndexQuery:
		return e.withStore(query.Store, func(s *store.Store) Result {
			deleted, err := s.DropPredIndex(query.Keys, query.ErrorIfNotExists)
			return countResult(KindDel, deleted, err)
		})

	case DropNonLinearIndexQuery:
		return e.withStore(query.Store, func(s *store.Store) Result {
			deleted, err := s.DropNonLinearIndex(query.Backends, query.ErrorIfNotExists)
			return countResult(KindDel, deleted, err)
		})

	case GetKeyQuery:
		return e.withStore(query.Store, func(s *store.Store) Result {
			entries, err := s.GetKey(query.Keys)
			if err != nil {
				return errResult(err)
			}
			r := ok(KindGet)
			r.Entries = entries
			return r
		})

	case GetPredQuery:
		return e.withStore(query.Store, func(s *store.Store) Result {
			var entries []valuetype.Entry
			err := e.pool.run(ctx, func() error {
				var innerErr error
				entries, innerErr = s.GetPred(query.Condition)
				return innerErr
			})
			if err != nil {
				return errResult(err)
			}
			r := ok(KindGet)
			r.Entries = entries
			return r
		})

	case GetSimNQuery:
		return e.withStore(query.Store, func(s *store.Store) Result {
			var scored []valuetype.ScoredEntry
			err := e.pool.run(ctx, func() error {
				var innerErr error
				scored, innerErr = s.GetSimN(query.Query, query.N, query.Algorithm, query.Index, query.Condition)
				return innerErr
			})
			if err != nil {
				return errResult(err)
			}
			r := ok(KindGetSimN)
			r.Scored = scored
			return r
		})

	case SetQuery:
		return e.withStore(query.Store, func(s *store.Store) Result {
			up, err := s.Set(query.Entries)
			if err != nil {
				return errResult(err)
			}
			r := ok(KindSet)
			r.Upsert = Upsert{Inserted: up.Inserted, Updated: up.Updated}
			return r
		})

	case DelKeyQuery:
		return e.withStore(query.Store, func(s *store.Store) Result {
			deleted, err := s.DelKey(query.Keys)
			return countResult(KindDel, deleted, err)
		})

	case DelPredQuery:
		return e.withStore(query.Store, func(s *store.Store) Result {
			deleted, err := s.DelPred(query.Condition)
			return countResult(KindDel, deleted, err)
		})

	case DropStoreQuery:
		deleted, err := e.catalog.DropStore(query.Store, query.ErrorIfNotExists)
		if err != nil {
			return errResult(err)
		}
		count := 0
		if deleted {
			count = 1
		}
		return countResult(KindDel, count, nil)

	case PurgeStoresQuery:
		count, err := e.catalog.PurgeStores()
		return countResult(KindDel, count, err)

	default:
		return errResult(apierr.New(apierr.CodeInvalidQuery, "unrecognized query type", nil))
	}
}

func (e *Executor) withStore(name string, fn func(*store.Store) Result) Result {
	s, err := e.catalog.GetStore(name)
	if err != nil {
		return errResult(err)
	}
	return fn(s)
}

func countResult(kind ResponseKind, count int, err error) Result {
	if err != nil {
		return errResult(err)
	}
	r := ok(kind)
	r.Count = count
	return r
}
