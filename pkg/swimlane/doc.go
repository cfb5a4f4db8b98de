// Package swimlane turns classified nodes into the grouped "swim-lane" view:
// one vertical band per semantic layer, each wrapped in a themed container.
//
// # Arrange
//
// [Arrange] re-bands classified nodes: layers are laid out left to right in
// ascending index order, each band as wide as its widest node, and nodes are
// stacked top to bottom inside their band sorted by domain, label and ID.
// Arrange is idempotent.
//
// # Containers
//
// [Builder] computes one [Container] per layer from the bounding box of its
// nodes plus a padding that grows logarithmically with the node count. When
// given the previously rendered containers, Build returns the previous
// pointer for every layer whose geometry moved less than the tolerance, so
// downstream renderers can skip unchanged layers.
//
// # Debounced refresh
//
// [Refresher] collapses bursts of change notifications (for example while a
// node is being dragged) into one rebuild after a quiet period.
package swimlane
