package daemon

import (
	"fmt"

	"github.com/ahnlich/ahnlich-go/internal/apierr"
	"github.com/ahnlich/ahnlich-go/internal/executor"
	"github.com/ahnlich/ahnlich-go/internal/nonlinear"
	"github.com/ahnlich/ahnlich-go/internal/predicate"
	"github.com/ahnlich/ahnlich-go/internal/similarity"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

// Query type discriminators, one per executor.Query implementation.
const (
	TypePing                = "ping"
	TypeInfoServer          = "info_server"
	TypeListClients         = "list_clients"
	TypeListStores          = "list_stores"
	TypeCreateStore         = "create_store"
	TypeCreatePredIndex     = "create_pred_index"
	TypeCreateNonLinear     = "create_nonlinear_index"
	TypeDropPredIndex       = "drop_pred_index"
	TypeDropNonLinearIndex  = "drop_nonlinear_index"
	TypeGetKey              = "get_key"
	TypeGetPred             = "get_pred"
	TypeGetSimN             = "get_sim_n"
	TypeSet                 = "set"
	TypeDelKey              = "del_key"
	TypeDelPred             = "del_pred"
	TypeDropStore           = "drop_store"
	TypePurgeStores         = "purge_stores"
)

// WireCondition is the JSON-safe shape of a predicate.Condition tree.
type WireCondition struct {
	IsLeaf     bool                       `json:"is_leaf"`
	LeafOp     int                        `json:"leaf_op,omitempty"`
	Key        string                     `json:"key,omitempty"`
	Value      *valuetype.MetadataValue   `json:"value,omitempty"`
	Values     []valuetype.MetadataValue  `json:"values,omitempty"`
	Combinator int                        `json:"combinator,omitempty"`
	Left       *WireCondition             `json:"left,omitempty"`
	Right      *WireCondition             `json:"right,omitempty"`
}

// toWireCondition converts nil-safely; nil stays nil.
func toWireCondition(c *predicate.Condition) *WireCondition {
	if c == nil {
		return nil
	}
	w := &WireCondition{
		IsLeaf:     c.IsLeaf,
		LeafOp:     int(c.LeafOp),
		Key:        c.Key,
		Values:     c.Values,
		Combinator: int(c.Combinator),
		Left:       toWireCondition(c.Left),
		Right:      toWireCondition(c.Right),
	}
	if c.IsLeaf && (c.LeafOp == predicate.OpEquals || c.LeafOp == predicate.OpNotEquals) {
		v := c.Value
		w.Value = &v
	}
	return w
}

func fromWireCondition(w *WireCondition) *predicate.Condition {
	if w == nil {
		return nil
	}
	c := &predicate.Condition{
		IsLeaf:     w.IsLeaf,
		LeafOp:     predicate.Op(w.LeafOp),
		Key:        w.Key,
		Values:     w.Values,
		Combinator: predicate.Combinator(w.Combinator),
		Left:       fromWireCondition(w.Left),
		Right:      fromWireCondition(w.Right),
	}
	if w.Value != nil {
		c.Value = *w.Value
	}
	return c
}

// WireQuery is the JSON envelope for a single pipeline query. Exactly
// the fields relevant to Type are populated; the rest stay zero.
type WireQuery struct {
	Type             string                 `json:"type"`
	Name             string                 `json:"name,omitempty"`
	Store            string                 `json:"store,omitempty"`
	Dimension        int                    `json:"dimension,omitempty"`
	Predicates       []string               `json:"predicates,omitempty"`
	Keys             []string               `json:"keys,omitempty"`
	NonLinear        []nonlinear.Backend    `json:"non_linear,omitempty"`
	Backends         []nonlinear.Backend    `json:"backends,omitempty"`
	Algorithm        similarity.Algorithm   `json:"algorithm,omitempty"`
	Index            nonlinear.Backend      `json:"index,omitempty"`
	ErrorIfExists    bool                   `json:"error_if_exists,omitempty"`
	ErrorIfNotExists bool                   `json:"error_if_not_exists,omitempty"`
	VectorKeys       []valuetype.Vector     `json:"vector_keys,omitempty"`
	Query            valuetype.Vector       `json:"query,omitempty"`
	N                int                    `json:"n,omitempty"`
	Condition        *WireCondition         `json:"condition,omitempty"`
	Entries          []valuetype.Entry      `json:"entries,omitempty"`
}

// ToQuery converts a WireQuery into the executor.Query it names, or an
// error if Type is unrecognized.
func (w WireQuery) ToQuery() (executor.Query, error) {
	switch w.Type {
	case TypePing:
		return executor.PingQuery{}, nil
	case TypeInfoServer:
		return executor.InfoServerQuery{}, nil
	case TypeListClients:
		return executor.ListClientsQuery{}, nil
	case TypeListStores:
		return executor.ListStoresQuery{}, nil
	case TypeCreateStore:
		return executor.CreateStoreQuery{
			Name: w.Name, Dimension: w.Dimension, Predicates: w.Predicates,
			NonLinear: w.NonLinear, ErrorIfExists: w.ErrorIfExists,
		}, nil
	case TypeCreatePredIndex:
		return executor.CreatePredIndexQuery{Store: w.Store, Keys: w.Keys}, nil
	case TypeCreateNonLinear:
		return executor.CreateNonLinearIndexQuery{Store: w.Store, Backends: w.Backends}, nil
	case TypeDropPredIndex:
		return executor.DropPredIndexQuery{Store: w.Store, Keys: w.Keys, ErrorIfNotExists: w.ErrorIfNotExists}, nil
	case TypeDropNonLinearIndex:
		return executor.DropNonLinearIndexQuery{Store: w.Store, Backends: w.Backends, ErrorIfNotExists: w.ErrorIfNotExists}, nil
	case TypeGetKey:
		return executor.GetKeyQuery{Store: w.Store, Keys: w.VectorKeys}, nil
	case TypeGetPred:
		return executor.GetPredQuery{Store: w.Store, Condition: fromWireCondition(w.Condition)}, nil
	case TypeGetSimN:
		return executor.GetSimNQuery{
			Store: w.Store, Query: w.Query, N: w.N, Algorithm: w.Algorithm, Index: w.Index,
			Condition: fromWireCondition(w.Condition),
		}, nil
	case TypeSet:
		return executor.SetQuery{Store: w.Store, Entries: w.Entries}, nil
	case TypeDelKey:
		return executor.DelKeyQuery{Store: w.Store, Keys: w.VectorKeys}, nil
	case TypeDelPred:
		return executor.DelPredQuery{Store: w.Store, Condition: fromWireCondition(w.Condition)}, nil
	case TypeDropStore:
		return executor.DropStoreQuery{Store: w.Store, ErrorIfNotExists: w.ErrorIfNotExists}, nil
	case TypePurgeStores:
		return executor.PurgeStoresQuery{}, nil
	default:
		return nil, fmt.Errorf("daemon: unrecognized query type %q", w.Type)
	}
}

// FromQuery converts an executor.Query into its WireQuery envelope.
func FromQuery(q executor.Query) (WireQuery, error) {
	switch query := q.(type) {
	case executor.PingQuery:
		return WireQuery{Type: TypePing}, nil
	case executor.InfoServerQuery:
		return WireQuery{Type: TypeInfoServer}, nil
	case executor.ListClientsQuery:
		return WireQuery{Type: TypeListClients}, nil
	case executor.ListStoresQuery:
		return WireQuery{Type: TypeListStores}, nil
	case executor.CreateStoreQuery:
		return WireQuery{
			Type: TypeCreateStore, Name: query.Name, Dimension: query.Dimension,
			Predicates: query.Predicates, NonLinear: query.NonLinear, ErrorIfExists: query.ErrorIfExists,
		}, nil
	case executor.CreatePredIndexQuery:
		return WireQuery{Type: TypeCreatePredIndex, Store: query.Store, Keys: query.Keys}, nil
	case executor.CreateNonLinearIndexQuery:
		return WireQuery{Type: TypeCreateNonLinear, Store: query.Store, Backends: query.Backends}, nil
	case executor.DropPredIndexQuery:
		return WireQuery{Type: TypeDropPredIndex, Store: query.Store, Keys: query.Keys, ErrorIfNotExists: query.ErrorIfNotExists}, nil
	case executor.DropNonLinearIndexQuery:
		return WireQuery{Type: TypeDropNonLinearIndex, Store: query.Store, Backends: query.Backends, ErrorIfNotExists: query.ErrorIfNotExists}, nil
	case executor.GetKeyQuery:
		return WireQuery{Type: TypeGetKey, Store: query.Store, VectorKeys: query.Keys}, nil
	case executor.GetPredQuery:
		return WireQuery{Type: TypeGetPred, Store: query.Store, Condition: toWireCondition(query.Condition)}, nil
	case executor.GetSimNQuery:
		return WireQuery{
			Type: TypeGetSimN, Store: query.Store, Query: query.Query, N: query.N,
			Algorithm: query.Algorithm, Index: query.Index, Condition: toWireCondition(query.Condition),
		}, nil
	case executor.SetQuery:
		return WireQuery{Type: TypeSet, Store: query.Store, Entries: query.Entries}, nil
	case executor.DelKeyQuery:
		return WireQuery{Type: TypeDelKey, Store: query.Store, VectorKeys: query.Keys}, nil
	case executor.DelPredQuery:
		return WireQuery{Type: TypeDelPred, Store: query.Store, Condition: toWireCondition(query.Condition)}, nil
	case executor.DropStoreQuery:
		return WireQuery{Type: TypeDropStore, Store: query.Store, ErrorIfNotExists: query.ErrorIfNotExists}, nil
	case executor.PurgeStoresQuery:
		return WireQuery{Type: TypePurgeStores}, nil
	default:
		return WireQuery{}, fmt.Errorf("daemon: unrecognized query %T", q)
	}
}

// WireError is the JSON shape of an apierr.Error.
type WireError struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Category string            `json:"category"`
	Severity string            `json:"severity"`
	Details  map[string]string `json:"details,omitempty"`
}

// WireResult is the JSON envelope for a single pipeline result.
type WireResult struct {
	Ok         bool                        `json:"ok"`
	Error      *WireError                  `json:"error,omitempty"`
	Kind       int                         `json:"kind"`
	ServerInfo *valuetype.ServerInfo       `json:"server_info,omitempty"`
	Clients    []valuetype.ConnectedClient `json:"clients,omitempty"`
	Stores     []valuetype.StoreInfo       `json:"stores,omitempty"`
	Count      int                         `json:"count,omitempty"`
	Entries    []valuetype.Entry           `json:"entries,omitempty"`
	Scored     []valuetype.ScoredEntry     `json:"scored,omitempty"`
	Inserted   int                         `json:"inserted,omitempty"`
	Updated    int                         `json:"updated,omitempty"`
}

// FromResult converts an executor.Result into its WireResult envelope.
func FromResult(r executor.Result) WireResult {
	w := WireResult{Ok: r.Ok, Kind: int(r.Kind), Count: r.Count, Entries: r.Entries, Scored: r.Scored}
	if !r.Ok && r.Err != nil {
		w.Error = &WireError{
			Code: r.Err.Code, Message: r.Err.Message,
			Category: string(r.Err.Category), Severity: string(r.Err.Severity),
			Details: r.Err.Details,
		}
	}
	if r.Kind == executor.KindServerInfo {
		info := r.ServerInfo
		w.ServerInfo = &info
	}
	w.Clients = r.Clients
	w.Stores = r.Stores
	w.Inserted = r.Upsert.Inserted
	w.Updated = r.Upsert.Updated
	return w
}

// ToResult converts a WireResult back into an executor.Result, used by
// the client to decode a server response.
func (w WireResult) ToResult() executor.Result {
	r := executor.Result{
		Ok: w.Ok, Kind: executor.ResponseKind(w.Kind), Count: w.Count,
		Entries: w.Entries, Scored: w.Scored, Clients: w.Clients, Stores: w.Stores,
		Upsert: executor.Upsert{Inserted: w.Inserted, Updated: w.Updated},
	}
	if w.ServerInfo != nil {
		r.ServerInfo = *w.ServerInfo
	}
	if w.Error != nil {
		r.Err = &apierr.Error{
			Code: w.Error.Code, Message: w.Error.Message,
			Category: apierr.Category(w.Error.Category), Severity: apierr.Severity(w.Error.Severity),
			Details: w.Error.Details,
		}
	}
	return r
}

// PipelineRequest is the length-prefixed frame's JSON body on the wire.
type PipelineRequest struct {
	Queries []WireQuery `json:"queries"`
}

// PipelineResponse is the length-prefixed frame's JSON body sent back.
type PipelineResponse struct {
	Results []WireResult `json:"results"`
}
