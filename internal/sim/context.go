package sim

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid"

	"github.com/othellosim/desim/internal/runctx"
)

// Context is one independent simulation run's identity plus its runctx.Context
// (the monotonic id counters, RNG, and completion state spec §9 asks to be
// encapsulated per-run rather than process-wide). ID is a ulid (sortable,
// used as the CSV output subdirectory and control-plane run handle);
// CorrelationUUID tags every log line and span for this run so concurrent
// `runs` are distinguishable in output.
type Context struct {
	*runctx.Context

	ID              ulid.ULID
	CorrelationUUID uuid.UUID
}

// NewContext builds a fresh run identity and a runctx.Context seeded with
// seed. entropy should be a monotonic source (ulid.Monotonic(...)) shared
// across a batch of runs so their ids sort in start order; pass nil to draw
// straight from crypto/rand for a single standalone run.
func NewContext(seed int64, entropy io.Reader) *Context {
	if entropy == nil {
		entropy = rand.Reader
	}
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return &Context{
		Context:         runctx.New(seed),
		ID:              id,
		CorrelationUUID: uuid.New(),
	}
}
