package ulid

import (
	"io"
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     io.Reader
	entropyOnce sync.Once
	generator   = DefaultGenerator
)

// DefaultEntropy returns a process-wide reader producing ULID entropy.
// Uniqueness is only guaranteed within the lifetime of a single process,
// which is all block identity requires.
func DefaultEntropy() io.Reader {
	entropyOnce.Do(func() {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))

		entropy = &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rng, 0),
		}
	})
	return entropy
}

var ulidRegex = regexp.MustCompile(`^[0123456789ABCDEFGHJKMNPQRSTVWXYZ]{26}$`)

// ValidID reports whether id is a well-formed ULID in Crockford's Base32.
func ValidID(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil && ulidRegex.MatchString(id)
}

// GenerateID generates a new block identifier.
func GenerateID() string {
	return generator()
}

func DefaultGenerator() string {
	ts := ulid.Timestamp(time.Now())
	return ulid.MustNew(ts, DefaultEntropy()).String()
}

// MockGenerator makes every subsequent GenerateID return mockValue.
// Tests use it to get deterministic ids; pair with ResetGenerator.
func MockGenerator(mockValue string) {
	generator = func() string {
		return mockValue
	}
}

func ResetGenerator() {
	generator = DefaultGenerator
}
