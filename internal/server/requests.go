package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/graph"
	"github.com/matzehuels/archlayout/pkg/swimlane"
)

type graphRequest struct {
	Nodes []graph.Node `json:"nodes" validate:"max=20000,dive"`
	Edges []graph.Edge `json:"edges" validate:"max=100000"`
}

func (r graphRequest) Graph() graph.Graph {
	return graph.Graph{Nodes: r.Nodes, Edges: r.Edges}
}

type layoutRequest struct {
	graphRequest
	Options graph.Options `json:"options"`
	Refresh bool          `json:"refresh"`
}

type containersRequest struct {
	Nodes    []graph.Node          `json:"nodes" validate:"max=20000,dive"`
	Previous []*swimlane.Container `json:"previous" validate:"omitempty,dive,required"`
}

type qualityRequest struct {
	Nodes []graph.Node `json:"nodes" validate:"max=20000,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateNode, graph.Node{})
	return v
}

func validateNode(sl validator.StructLevel) {
	n := sl.Current().Interface().(graph.Node)
	if errors.ValidateNodeID(n.ID) != nil {
		sl.ReportError(n.ID, "ID", "id", "nodeid", "")
	}
	if n.Size != nil && (n.Size.Width < 0 || n.Size.Height < 0) {
		sl.ReportError(n.Size, "Size", "size", "nonnegative", "")
	}
}

// errBodyTooLarge marks a request body that exceeded the configured limit.
var errBodyTooLarge = stderrors.New("request body too large")

// decode reads a JSON body into v and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errBodyTooLarge
		case stderrors.Is(err, io.EOF):
			return errors.New(errors.ErrCodeInvalidInput, "empty request body")
		default:
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed request body")
		}
	}
	if err := validate.Struct(v); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s", describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s exceeds the limit of %s entries", fe.Namespace(), fe.Param())
	case "nodeid":
		return fmt.Sprintf("%s: invalid node id", fe.Namespace())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag())
	}
}
