package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cratestack/pkg/cache"
	"github.com/matzehuels/cratestack/pkg/catalog"
	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/pack"
)

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this execution, for persistence and logs.
	RunID string

	// Record is the verified placement record.
	Record *pack.Record

	// RecordHash is the content hash of the record JSON.
	RecordHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount     int // expanded items attempted
	PlacedCount   int
	UnplacedCount int
	PackTime      time.Duration
	VerifyTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RecordHit bool // whether the record came from cache
	RenderHit bool // whether all artifacts came from cache
}

// Runner encapsulates pipeline execution with caching. Both CLI and
// API use it so the caching logic lives in one place.
//
// The Runner is stateless apart from the cache and logger; multiple
// goroutines can safely share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer means the default keyer; a nil cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Run executes the complete pack → verify → render pipeline.
func (r *Runner) Run(ctx context.Context, cat *catalog.Catalog, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	packStart := time.Now()
	rec, recordHit, err := r.PackWithCacheInfo(ctx, cat, opts)
	if err != nil {
		return nil, err
	}
	result.Record = rec
	result.Stats.PackTime = time.Since(packStart)
	result.Stats.ItemCount = rec.Stats.PlacedCount + rec.Stats.UnplacedCount
	result.Stats.PlacedCount = rec.Stats.PlacedCount
	result.Stats.UnplacedCount = rec.Stats.UnplacedCount
	result.CacheInfo.RecordHit = recordHit

	r.Logger.Info("packed catalog",
		"run", result.RunID,
		"placed", rec.Stats.PlacedCount,
		"unplaced", rec.Stats.UnplacedCount,
		"utilization", rec.Stats.Utilization,
		"duration", result.Stats.PackTime)

	// Verify even fresh records: a violation here means an engine bug
	// and must surface before anything is written or served.
	verifyStart := time.Now()
	if err := pack.Verify(rec); err != nil {
		return nil, err
	}
	result.Stats.VerifyTime = time.Since(verifyStart)

	recData, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode record")
	}
	result.RecordHash = cache.Hash(recData)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, rec, result.RecordHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PackWithCacheInfo produces the placement record, consulting the
// cache first, and reports whether the record came from cache.
func (r *Runner) PackWithCacheInfo(ctx context.Context, cat *catalog.Catalog, opts Options) (*pack.Record, bool, error) {
	cfg, err := opts.PackConfig()
	if err != nil {
		return nil, false, err
	}

	catalogHash, err := cat.Hash()
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.RecordKey(catalogHash, opts.RecordKeyOpts(cfg))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached pack.Record
			if err := json.Unmarshal(data, &cached); err == nil && pack.Verify(&cached) == nil {
				return &cached, true, nil
			}
			// Corrupt entry: fall through and repack.
			r.Logger.Warn("discarding invalid cached record", "key", cacheKey)
		}
	}

	engine, err := pack.New(cfg)
	if err != nil {
		return nil, false, err
	}
	rec, err := engine.Run(ctx, cat)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(rec); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLRecord)
	}

	return rec, false, nil
}

// Pack is a convenience wrapper that discards the cache hit info.
func (r *Runner) Pack(ctx context.Context, cat *catalog.Catalog, opts Options) (*pack.Record, error) {
	rec, _, err := r.PackWithCacheInfo(ctx, cat, opts)
	return rec, err
}

// RenderWithCacheInfo renders all requested formats, consulting the
// artifact cache first. It reports whether every artifact was cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, rec *pack.Record, recordHash string, opts Options) (map[string][]byte, bool, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(recordHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
			continue
		}
		allCached = false

		data, err := renderFormat(rec, format, opts)
		if err != nil {
			return nil, false, err
		}
		artifacts[format] = data
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return artifacts, allCached, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, rec *pack.Record, recordHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, rec, recordHash, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
