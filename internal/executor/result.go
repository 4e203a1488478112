package executor

import (
	"github.com/ahnlich/ahnlich-go/internal/apierr"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// ResponseKind tags which variant of a successful response this Result
// carries. Exactly one of the corresponding fields on Result is
// meaningful for a given Kind.
type ResponseKind int

const (
	KindPong ResponseKind = iota
	KindServerInfo
	KindClients
	KindStores
	KindUnit
	KindCreateIndex
	KindDel
	KindGet
	KindGetSimN
	KindSet
)

// Upsert mirrors store.Upsert at the response boundary, avoiding an
// executor→store import cycle concern for callers that only need the
// shape, not the store package itself.
type Upsert struct {
	Inserted int
	Updated  int
}

// Result is the uniform tagged response for one executed query: either
// a successful response of the given Kind, or an error.
type Result struct {
	Ok  bool
	Err *apierr.Error

	Kind ResponseKind

	ServerInfo valuetype.ServerInfo
	Clients    []valuetype.ConnectedClient
	Stores     []valuetype.StoreInfo
	Count      int
	Entries    []valuetype.Entry
	Scored     []valuetype.ScoredEntry
	Upsert     Upsert
}

func ok(kind ResponseKind) Result {
	return Result{Ok: true, Kind: kind}
}

func errResult(err error) Result {
	if ae, ok := err.(*apierr.Error); ok {
		return Result{Ok: false, Err: ae}
	}
	return Result{Ok: false, Err: apierr.Internal(err.Error(), err)}
}
