// Package idx generates ULID identifiers. They sort by creation time, which
// suits token ids and request ids that are mostly looked up by recency.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero is the empty ID.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	genOnce sync.Once
	genMu   sync.Mutex
	entropy *ulid.MonotonicEntropy
)

func initEntropy() {
	entropy = ulid.Monotonic(rand.Reader, 0)
}

// New returns a new ID for the current UTC time.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns an ID whose timestamp is t. IDs generated within the same
// millisecond still sort in generation order.
func NewAt(t time.Time) ID {
	genOnce.Do(initEntropy)

	genMu.Lock()
	defer genMu.Unlock()

	u, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return Zero
	}
	return ID(u.String())
}

// MustNew is like New but panics if no ID could be generated.
func MustNew() ID {
	id := New()
	if id == Zero {
		panic("idx: failed to generate ULID")
	}
	return id
}

// Parse validates s as a ULID and returns it in canonical upper case.
func Parse(s string) (ID, error) {
	u, err := ulid.ParseStrict(strings.TrimSpace(s))
	if err != nil {
		return Zero, ErrInvalid
	}
	return ID(u.String()), nil
}

func (id ID) IsZero() bool { return id == Zero }

func (id ID) String() string { return string(id) }

// Time returns the timestamp embedded in the ID, or the zero time if the
// ID does not parse.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time()).UTC()
}
