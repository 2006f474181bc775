// Package cache provides content-addressed caching for packing runs
// and rendered artifacts.
//
// Keys are derived from the inputs that determine the output: a record
// key hashes the normalized catalog plus every packing parameter, an
// artifact key hashes the record plus the render options. Two runs
// with identical inputs therefore share one cache entry, and any input
// change produces a fresh key.
//
// Backends: [FileCache] for CLI usage, [RedisCache] for server
// deployments, [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Cache TTLs. Packing is deterministic, so entries never go stale;
// expiry exists to bound disk and memory usage.
const (
	// TTLRecord is the lifetime of cached packing records.
	TTLRecord = 30 * 24 * time.Hour

	// TTLArtifact is the lifetime of cached rendered artifacts.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get retrieves a value. The second return reports whether the
	// key was present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// RecordKeyOpts are the packing parameters that go into a record key.
// Every field that changes the placement result must appear here.
type RecordKeyOpts struct {
	Container        [3]float64
	SupportThreshold float64
	Epsilon          float64
	Order            string
	MaxAttempts      int
}

// ArtifactKeyOpts are the render options that go into an artifact key.
type ArtifactKeyOpts struct {
	Format string
	Title  string
	Labels bool
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// RecordKey generates a key for a packing record. catalogHash is
	// the hash of the normalized catalog JSON.
	RecordKey(catalogHash string, opts RecordKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact. recordHash
	// is the hash of the record JSON.
	ArtifactKey(recordHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates hash-based keys with stage prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// RecordKey generates a key for a packing record.
func (k *DefaultKeyer) RecordKey(catalogHash string, opts RecordKeyOpts) string {
	return hashKey("record", catalogHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(recordHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", recordHash, opts)
}
