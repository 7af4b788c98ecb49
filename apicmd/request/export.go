package request

import (
	"encoding/json"
	"errors"
)

// ErrInvalidImport indicates the import payload is not a recognizable
// exported session.
var ErrInvalidImport = errors.New("invalid session file")

// exportEnvelope matches the on-disk export format: the spec nested under a
// single "state" key.
type exportEnvelope struct {
	State *Spec `json:"state"`
}

// Export renders the spec as a pretty-printed JSON document suitable for
// sharing between installations.
func Export(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(exportEnvelope{State: spec}, "", "  ")
}

// Import parses an exported document. The payload must carry a state object
// with an httpMethod field; anything else is rejected rather than half
// loaded. Entry IDs are regenerated so imported rows never collide with
// live ones, and every list is normalized back to its sentinel invariant.
func Import(data []byte) (*Spec, error) {
	// Probe for state.httpMethod before unmarshalling into the model, since
	// a zero-value Spec is indistinguishable from an absent one afterwards.
	var probe struct {
		State map[string]json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, ErrInvalidImport
	}
	if probe.State == nil {
		return nil, ErrInvalidImport
	}
	if _, ok := probe.State["httpMethod"]; !ok {
		return nil, ErrInvalidImport
	}

	var envelope exportEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, ErrInvalidImport
	}

	spec := envelope.State
	spec.RegenerateIDs()
	spec.Normalize()
	return spec, nil
}
