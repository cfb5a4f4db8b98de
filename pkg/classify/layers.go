package classify

import "fmt"

// Layer is a semantic tier of an architecture diagram. Lower indices sit
// closer to the user.
type Layer int

// The classifier's layers, in priority order for tie-breaking.
const (
	LayerClient Layer = iota
	LayerNetwork
	LayerIdentity
	LayerService
	LayerMessaging
	LayerProcessing
	LayerData
	LayerObservability
	LayerExternal
)

// NumLayers is the number of layers the classifier assigns.
const NumLayers = int(LayerExternal) + 1

var layerNames = [NumLayers]string{
	"client",
	"network",
	"identity",
	"service",
	"messaging",
	"processing",
	"data",
	"observability",
	"external",
}

func (l Layer) String() string {
	if l < 0 || int(l) >= NumLayers {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// ParseLayer resolves a layer name as produced by String.
func ParseLayer(s string) (Layer, error) {
	for i, name := range layerNames {
		if name == s {
			return Layer(i), nil
		}
	}
	return 0, fmt.Errorf("unknown layer: %q", s)
}
