package predicate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahnlich/ahnlich-go/internal/valuetype"
)

func meta(pairs ...string) valuetype.MetadataMap {
	m := make(valuetype.MetadataMap)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = valuetype.NewText(pairs[i+1])
	}
	return m
}

func TestEvaluateEquals(t *testing.T) {
	m := meta("brand", "Nike")
	require.True(t, Evaluate(Equals("brand", valuetype.NewText("Nike")), m))
	require.False(t, Evaluate(Equals("brand", valuetype.NewText("Adidas")), m))
	require.False(t, Evaluate(Equals("missing", valuetype.NewText("x")), m))
}

func TestEvaluateNotEquals(t *testing.T) {
	m := meta("brand", "Nike")
	require.False(t, Evaluate(NotEquals("brand", valuetype.NewText("Nike")), m))
	require.True(t, Evaluate(NotEquals("brand", valuetype.NewText("Adidas")), m))
	require.True(t, Evaluate(NotEquals("missing", valuetype.NewText("x")), m))
}

func TestEvaluateInNotIn(t *testing.T) {
	m := meta("brand", "Nike")
	vals := []valuetype.MetadataValue{valuetype.NewText("Nike"), valuetype.NewText("Puma")}
	require.True(t, Evaluate(In("brand", vals), m))
	require.False(t, Evaluate(NotIn("brand", vals), m))

	require.False(t, Evaluate(In("missing", vals), m))
	require.True(t, Evaluate(NotIn("missing", vals), m))
}

func TestEvaluateAndOrShortCircuit(t *testing.T) {
	m := meta("brand", "Nike")
	and := And(Equals("brand", valuetype.NewText("Nike")), Equals("brand", valuetype.NewText("Adidas")))
	require.False(t, Evaluate(and, m))

	or := Or(Equals("brand", valuetype.NewText("Adidas")), Equals("brand", valuetype.NewText("Nike")))
	require.True(t, Evaluate(or, m))
}

func TestValidateRejectsMalformed(t *testing.T) {
	require.Error(t, (*Condition)(nil).Validate())

	bad := &Condition{Combinator: CombAnd, Left: Equals("a", valuetype.NewText("1")), Right: nil}
	require.Error(t, bad.Validate())

	emptyIn := In("a", nil)
	require.Error(t, emptyIn.Validate())

	ok := And(Equals("a", valuetype.NewText("1")), NotIn("b", []valuetype.MetadataValue{valuetype.NewText("2")}))
	require.NoError(t, ok.Validate())
}
