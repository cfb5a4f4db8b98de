package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/archlayout/pkg/graph"
)

func node(id string, s graph.Signals) graph.Node {
	return graph.Node{ID: id, Signals: s}
}

func layerOf(t *testing.T, nodes []graph.Node, id string) Layer {
	t.Helper()
	for _, n := range nodes {
		if n.ID == id {
			require.True(t, n.HasLayer(), "node %s unclassified", id)
			return Layer(n.Layer())
		}
	}
	t.Fatalf("node %s missing", id)
	return -1
}

func TestClassifyTypicalArchitecture(t *testing.T) {
	nodes := []graph.Node{
		node("web", graph.Signals{Label: "Web App"}),
		node("gw", graph.Signals{Type: "gateway", Label: "Edge"}),
		node("pay", graph.Signals{Label: "Payment Microservice"}),
		node("chat", graph.Signals{Label: "Chat Microservice"}),
		node("db", graph.Signals{Type: "database"}),
	}
	edges := []graph.Edge{
		{Source: "web", Target: "gw"},
		{Source: "gw", Target: "pay"},
		{Source: "gw", Target: "chat"},
		{Source: "pay", Target: "db"},
	}

	out := New().Classify(nodes, edges)

	assert.Equal(t, LayerClient, layerOf(t, out, "web"))
	assert.Equal(t, LayerNetwork, layerOf(t, out, "gw"))
	assert.Equal(t, LayerService, layerOf(t, out, "pay"))
	assert.Equal(t, LayerMessaging, layerOf(t, out, "chat"))
	assert.Equal(t, LayerData, layerOf(t, out, "db"))

	for _, n := range nodes {
		assert.False(t, n.HasLayer(), "input node %s was mutated", n.ID)
	}
}

func TestClassifyKeepsExistingLayer(t *testing.T) {
	nine := 9
	nodes := []graph.Node{{ID: "db", Signals: graph.Signals{Type: "database"}, LayerIndex: &nine}}
	out := New().Classify(nodes, nil)
	assert.Equal(t, 9, out[0].Layer())

	e, ok := New().Explain(nodes, nil, "db")
	require.True(t, ok)
	assert.True(t, e.Preassigned)
}

func TestClassifyDeterministicAndIdempotent(t *testing.T) {
	nodes := []graph.Node{
		node("a", graph.Signals{Label: "Auth Service"}),
		node("b", graph.Signals{Label: "Kafka Topic"}),
		node("c", graph.Signals{Description: "data store"}),
		node("d", graph.Signals{}),
	}
	edges := []graph.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}}
	c := New()
	first := c.Classify(nodes, edges)
	second := c.Classify(nodes, edges)
	for i := range first {
		assert.Equal(t, first[i].Layer(), second[i].Layer())
	}
	again := c.Classify(first, edges)
	for i := range first {
		assert.Equal(t, first[i].Layer(), again[i].Layer())
	}
}

func TestLowConfidenceFallback(t *testing.T) {
	nodes := []graph.Node{{ID: "zz"}, {ID: "qq"}, {ID: "lonely"}}
	edges := []graph.Edge{{Source: "zz", Target: "qq"}}

	c := New(WithThreshold(20))
	ex := c.ExplainAll(nodes, edges)
	assert.Equal(t, int(LayerClient), ex[0].Layer)
	assert.Equal(t, FallbackSource, ex[0].Fallback)
	assert.Equal(t, int(LayerData), ex[1].Layer)
	assert.Equal(t, FallbackSink, ex[1].Fallback)
	assert.Equal(t, int(LayerService), ex[2].Layer)
	assert.Equal(t, FallbackDefault, ex[2].Fallback)

	// With the default threshold the topology rule alone is confident enough.
	ex = New().ExplainAll(nodes, edges)
	assert.Equal(t, int(LayerClient), ex[0].Layer)
	assert.Empty(t, ex[0].Fallback)
	assert.Equal(t, 15, ex[0].MaxScore)
}

func TestSelfLoopIsNotTopology(t *testing.T) {
	nodes := []graph.Node{{ID: "zz"}}
	edges := []graph.Edge{{Source: "zz", Target: "zz"}}
	e, _ := New().Explain(nodes, edges, "zz")
	assert.Equal(t, int(LayerService), e.Layer)
	assert.Equal(t, FallbackDefault, e.Fallback)
}

func TestTieGoesToLowerLayer(t *testing.T) {
	always := func(Features) int { return 1 }
	c := New(WithRules([]Rule{
		{Name: "data", Layer: LayerData, Weight: 20, Match: always},
		{Name: "client", Layer: LayerClient, Weight: 20, Match: always},
		{Name: "bogus", Layer: Layer(99), Weight: 100, Match: always},
	}))
	e := c.Score(Features{})
	assert.Equal(t, int(LayerClient), e.Layer)
	assert.Equal(t, 20, e.MaxScore)
	assert.Len(t, e.Hits, 2, "rules outside the layer range are ignored")
}

func TestExplainUnknownID(t *testing.T) {
	_, ok := New().Explain([]graph.Node{{ID: "a"}}, nil, "b")
	assert.False(t, ok)
}

func TestLayerNames(t *testing.T) {
	for l := Layer(0); int(l) < NumLayers; l++ {
		parsed, err := ParseLayer(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
	assert.Equal(t, "layer(12)", Layer(12).String())
	_, err := ParseLayer("mainframe")
	assert.Error(t, err)
}
