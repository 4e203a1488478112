package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahnlich/ahnlich-go/internal/apierr"
	"github.com/ahnlich/ahnlich-go/internal/catalog"
	"github.com/ahnlich/ahnlich-go/internal/predicate"
	"github.com/ahnlich/ahnlich-go/internal/session"
	"github.com/ahnlich/ahnlich-go/internal/similarity"
	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

func newTestExecutor() *Executor {
	return New(catalog.New(), session.NewManager(), "127.0.0.1:1369", 10)
}

func TestExecutePing(t *testing.T) {
	e := newTestExecutor()
	r := e.Execute(context.Background(), PingQuery{})
	require.True(t, r.Ok)
	require.Equal(t, KindPong, r.Kind)
}

func TestExecuteCreateStoreAndSet(t *testing.T) {
	e := newTestExecutor()
	r := e.Execute(context.Background(), CreateStoreQuery{Name: "s", Dimension: 2, ErrorIfExists: true})
	require.True(t, r.Ok)

	r = e.Execute(context.Background(), SetQuery{
		Store: "s",
		Entries: []valuetype.Entry{
			{Vector: valuetype.Vector{1, 2}, Metadata: valuetype.MetadataMap{"a": valuetype.NewText("1")}},
		},
	})
	require.True(t, r.Ok)
	require.Equal(t, Upsert{Inserted: 1, Updated: 0}, r.Upsert)
}

// Scenario E — Pipeline with mixed success.
func TestScenarioEPipelineMixedSuccess(t *testing.T) {
	e := newTestExecutor()
	results := e.RunPipeline(context.Background(), []Query{
		PingQuery{},
		SetQuery{Store: "nonexistent_store", Entries: []valuetype.Entry{{Vector: valuetype.Vector{1}}}},
		ListStoresQuery{},
	})

	require.Len(t, results, 3)
	require.True(t, results[0].Ok)
	require.Equal(t, KindPong, results[0].Kind)

	require.False(t, results[1].Ok)
	require.Equal(t, apierr.CodeStoreNotFound, results[1].Err.Code)

	require.True(t, results[2].Ok)
	require.Equal(t, KindStores, results[2].Kind)
}

func TestGetSimNThroughExecutor(t *testing.T) {
	e := newTestExecutor()
	e.Execute(context.Background(), CreateStoreQuery{Name: "s", Dimension: 2, ErrorIfExists: true})
	e.Execute(context.Background(), SetQuery{Store: "s", Entries: []valuetype.Entry{
		{Vector: valuetype.Vector{1, 0}},
		{Vector: valuetype.Vector{0, 1}},
	}})

	r := e.Execute(context.Background(), GetSimNQuery{
		Store: "s", Query: valuetype.Vector{1, 0}, N: 1, Algorithm: similarity.Cosine,
	})
	require.True(t, r.Ok)
	require.Equal(t, KindGetSimN, r.Kind)
	require.Len(t, r.Scored, 1)
}

func TestGetPredThroughExecutor(t *testing.T) {
	e := newTestExecutor()
	e.Execute(context.Background(), CreateStoreQuery{Name: "s", Dimension: 2, Predicates: []string{"brand"}, ErrorIfExists: true})
	e.Execute(context.Background(), SetQuery{Store: "s", Entries: []valuetype.Entry{
		{Vector: valuetype.Vector{1, 2}, Metadata: valuetype.MetadataMap{"brand": valuetype.NewText("Nike")}},
	}})

	r := e.Execute(context.Background(), GetPredQuery{Store: "s", Condition: predicate.Equals("brand", valuetype.NewText("Nike"))})
	require.True(t, r.Ok)
	require.Len(t, r.Entries, 1)
}

func TestDropStoreThroughExecutor(t *testing.T) {
	e := newTestExecutor()
	e.Execute(context.Background(), CreateStoreQuery{Name: "s", Dimension: 2, ErrorIfExists: true})

	r := e.Execute(context.Background(), DropStoreQuery{Store: "s", ErrorIfNotExists: true})
	require.True(t, r.Ok)
	require.Equal(t, 1, r.Count)

	r = e.Execute(context.Background(), DropStoreQuery{Store: "s", ErrorIfNotExists: true})
	require.False(t, r.Ok)
}

func TestPipelineRespectsCancelledContext(t *testing.T) {
	e := newTestExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := e.RunPipeline(ctx, []Query{PingQuery{}})
	require.Len(t, results, 1)
	require.False(t, results[0].Ok)
	require.Equal(t, apierr.CodeCancelled, results[0].Err.Code)
}
