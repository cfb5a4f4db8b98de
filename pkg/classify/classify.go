// Package classify assigns nodes to semantic layers (client, network,
// identity, service, messaging, processing, data, observability, external).
//
// Classification is a weighted vote. Every [Rule] in the table inspects the
// lower-cased [Features] of a node and adds points to one layer; the layer
// with the highest total wins, ties going to the lower layer index. When no
// layer reaches the low-confidence threshold the node's topology decides:
// pure sources become clients, pure sinks become data stores, everything
// else lands in the service layer.
//
// Nodes that already carry a layer index are left alone, so Classify is
// idempotent.
package classify

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archlayout/pkg/graph"
)

// DefaultThreshold is the score below which topology overrides the vote.
const DefaultThreshold = 10

// Fallback reasons reported in [Explanation.Fallback].
const (
	FallbackSource  = "topology/source"
	FallbackSink    = "topology/sink"
	FallbackDefault = "default"
)

// Classifier evaluates a rule table against nodes. It is safe for concurrent
// use once constructed.
type Classifier struct {
	rules     []Rule
	threshold int
	logger    *log.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules replaces the rule table.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) { c.rules = append([]Rule(nil), rules...) }
}

// WithThreshold sets the low-confidence threshold.
func WithThreshold(t int) Option {
	return func(c *Classifier) { c.threshold = t }
}

// WithLogger sets the logger used for per-node debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a classifier using [DefaultRules] unless overridden.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:     DefaultRules(),
		threshold: DefaultThreshold,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns a copy of the rule table.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Threshold returns the low-confidence threshold.
func (c *Classifier) Threshold() int { return c.threshold }

// Signature describes the rule table as "name:layer:weight" entries, in
// table order. Two classifiers with equal signatures and thresholds score
// alike as long as rule names identify their predicates.
func (c *Classifier) Signature() []string {
	out := make([]string, len(c.rules))
	for i, r := range c.rules {
		out[i] = fmt.Sprintf("%s:%d:%d", r.Name, int(r.Layer), r.Weight)
	}
	return out
}

// Hit records one rule that contributed points.
type Hit struct {
	Rule   string `json:"rule"`
	Layer  Layer  `json:"layer"`
	Points int    `json:"points"`
}

// Explanation is the full scoring trace for one node.
type Explanation struct {
	NodeID      string         `json:"node_id"`
	Label       string         `json:"label"`
	Layer       int            `json:"layer"`
	Preassigned bool           `json:"preassigned,omitempty"`
	Scores      [NumLayers]int `json:"scores"`
	MaxScore    int            `json:"max_score"`
	Hits        []Hit          `json:"hits,omitempty"`
	Fallback    string         `json:"fallback,omitempty"`
}

// Classify returns a copy of nodes in which every node has a layer index.
// Existing layer indices are kept unchanged. Edges whose endpoints are not
// in nodes are ignored.
func (c *Classifier) Classify(nodes []graph.Node, edges []graph.Edge) []graph.Node {
	return Apply(nodes, c.ExplainAll(nodes, edges))
}

// Apply assigns the layers chosen in explanations, which must come from
// [Classifier.ExplainAll] over the same nodes, and returns the new nodes.
func Apply(nodes []graph.Node, explanations []Explanation) []graph.Node {
	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		if n.HasLayer() {
			out[i] = n.Clone()
			continue
		}
		out[i] = n.WithLayer(explanations[i].Layer)
	}
	return out
}

// ExplainAll returns one explanation per node, in input order.
func (c *Classifier) ExplainAll(nodes []graph.Node, edges []graph.Edge) []Explanation {
	idx := graph.NewIndex(graph.Graph{Nodes: nodes, Edges: edges})
	out := make([]Explanation, len(nodes))
	for i, n := range nodes {
		if n.HasLayer() {
			out[i] = Explanation{NodeID: n.ID, Label: n.DisplayLabel(), Layer: n.Layer(), Preassigned: true}
			continue
		}
		v := idx.Pos[n.ID]
		f := FeaturesOf(n, idx.HasIncoming(v), idx.HasOutgoing(v))
		e := c.Score(f)
		e.NodeID = n.ID
		e.Label = n.DisplayLabel()
		c.logger.Debug("classified node", "id", n.ID, "layer", Layer(e.Layer), "score", e.MaxScore, "fallback", e.Fallback)
		out[i] = e
	}
	return out
}

// Explain returns the explanation for the node with the given ID.
func (c *Classifier) Explain(nodes []graph.Node, edges []graph.Edge, id string) (Explanation, bool) {
	for i, e := range c.ExplainAll(nodes, edges) {
		if nodes[i].ID == id {
			return e, true
		}
	}
	return Explanation{}, false
}

// Score runs the rule table against f and selects a layer.
func (c *Classifier) Score(f Features) Explanation {
	var e Explanation
	for _, r := range c.rules {
		if r.Layer < 0 || int(r.Layer) >= NumLayers {
			continue
		}
		n := r.Match(f)
		if n <= 0 {
			continue
		}
		points := n * r.Weight
		e.Scores[r.Layer] += points
		e.Hits = append(e.Hits, Hit{Rule: r.Name, Layer: r.Layer, Points: points})
	}

	best := LayerService
	for l, s := range e.Scores {
		if s > e.MaxScore {
			e.MaxScore = s
			best = Layer(l)
		}
	}

	if e.MaxScore < c.threshold {
		switch {
		case f.Source():
			best, e.Fallback = LayerClient, FallbackSource
		case f.Sink():
			best, e.Fallback = LayerData, FallbackSink
		default:
			best, e.Fallback = LayerService, FallbackDefault
		}
	}
	e.Layer = int(best)
	return e
}

// FeaturesOf lower-cases the signals of n.
func FeaturesOf(n graph.Node, hasIncoming, hasOutgoing bool) Features {
	s := n.Signals
	return Features{
		ID:          strings.ToLower(n.ID),
		Type:        strings.ToLower(s.Type),
		Label:       strings.ToLower(s.Label),
		Description: strings.ToLower(s.Description),
		Technology:  strings.ToLower(s.Technology),
		Provider:    strings.ToLower(s.Provider),
		Icon:        strings.ToLower(s.Icon),
		HasIncoming: hasIncoming,
		HasOutgoing: hasOutgoing,
	}
}
