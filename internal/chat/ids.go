package chat

import "github.com/google/uuid"

// IDSource issues turn identifiers. Abstracted so tests can supply
// deterministic ids.
type IDSource interface {
	NextID() string
}

type uuidSource struct{}

func (uuidSource) NextID() string { return uuid.NewString() }

// NewIDSource returns the production id source (random UUIDs; collision
// probability is negligible for a session's lifetime).
func NewIDSource() IDSource { return uuidSource{} }
