package attack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iffystrayer/AITM-sub002/internal/cache"
)

// DefaultSourceURL is the upstream enterprise ATT&CK STIX bundle.
const DefaultSourceURL = "https://raw.githubusercontent.com/mitre/cti/master/enterprise-attack/enterprise-attack.json"

// maxBundleBytes caps how much of a remote response the loader will read.
// The enterprise bundle is ~40MB; anything past this is a broken source.
const maxBundleBytes = 256 << 20

// Snapshot source labels, in fallback order.
const (
	SourcePrimary  = "primary"
	SourceCache    = "cache"
	SourceEmbedded = "embedded"
)

// Fetcher retrieves the raw catalog document from the primary source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPFetcher fetches a STIX bundle over HTTP.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher returns a fetcher for url. A zero timeout falls back to 30s;
// the upstream bundle is large, so callers with slow links should raise it.
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	if url == "" {
		url = DefaultSourceURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrSourceUnavailable, f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: HTTP %d", ErrSourceUnavailable, f.url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBundleBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrSourceUnavailable, f.url, err)
	}
	return data, nil
}

// LoaderConfig wires a Loader. Nil fields get safe defaults: no fetcher means
// offline operation, no cache means caching is skipped.
type LoaderConfig struct {
	Fetcher Fetcher
	Cache   cache.Store
	Logger  *slog.Logger

	// Offline skips the primary source even when a fetcher is configured.
	Offline bool
}

// Loader produces a normalized catalog by trying, in order, the primary
// remote source, the local cache, and the embedded dataset. The first tier
// that yields a usable catalog wins; a tier failure is logged and the next
// tier tried. Only the embedded tier is allowed to fail the whole load.
type Loader struct {
	fetcher Fetcher
	cache   cache.Store
	logger  *slog.Logger
	offline bool
}

// LoadResult is one successful catalog load and its provenance.
type LoadResult struct {
	Catalog        Catalog
	Source         string
	SkippedRecords int
}

func NewLoader(cfg LoaderConfig) *Loader {
	l := &Loader{
		fetcher: cfg.Fetcher,
		cache:   cfg.Cache,
		logger:  cfg.Logger,
		offline: cfg.Offline,
	}
	if l.cache == nil {
		l.cache = cache.Nop{}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load walks the tier chain and returns the first catalog that parses with at
// least one technique.
func (l *Loader) Load(ctx context.Context) (LoadResult, error) {
	type tier struct {
		name string
		load func(context.Context) (Catalog, int, error)
	}

	var tiers []tier
	if l.fetcher != nil && !l.offline {
		tiers = append(tiers, tier{SourcePrimary, l.loadPrimary})
	}
	tiers = append(tiers,
		tier{SourceCache, l.loadCache},
		tier{SourceEmbedded, l.loadEmbedded},
	)

	var tierErrs []error
	for _, t := range tiers {
		catalog, skipped, err := t.load(ctx)
		if err != nil {
			l.logger.Warn("catalog source failed, falling back",
				"source", t.name,
				"error", err)
			tierErrs = append(tierErrs, fmt.Errorf("%s: %w", t.name, err))
			continue
		}

		l.logger.Info("catalog loaded",
			"source", t.name,
			"techniques", len(catalog.Techniques),
			"tactics", len(catalog.Tactics),
			"mitigations", len(catalog.MitigationNames),
			"skipped_records", skipped)
		return LoadResult{Catalog: catalog, Source: t.name, SkippedRecords: skipped}, nil
	}

	// The terminal error carries the sentinel and names every attempted tier.
	return LoadResult{}, fmt.Errorf("%w: all catalog sources failed: %w",
		ErrSourceUnavailable, errors.Join(tierErrs...))
}

func (l *Loader) loadPrimary(ctx context.Context) (Catalog, int, error) {
	raw, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return Catalog{}, 0, err
	}

	catalog, skipped, err := ParseSTIXBundle(raw)
	if err != nil {
		return Catalog{}, 0, err
	}
	if len(catalog.Techniques) == 0 {
		return Catalog{}, 0, fmt.Errorf("primary source yielded no techniques")
	}

	// Write-through so the next offline start has a warm cache. A cache
	// write failure never fails the load.
	if err := l.cache.Write(ctx, raw); err != nil {
		l.logger.Warn("catalog cache write failed",
			"backend", l.cache.Name(),
			"error", err)
	} else {
		l.logger.Debug("catalog cached", "backend", l.cache.Name())
	}

	return catalog, skipped, nil
}

// loadCache re-parses the raw bundle cached by a previous primary load, so
// both tiers go through the same normalization.
func (l *Loader) loadCache(ctx context.Context) (Catalog, int, error) {
	raw, err := l.cache.Read(ctx)
	if err != nil {
		return Catalog{}, 0, err
	}

	catalog, skipped, err := ParseSTIXBundle(raw)
	if err != nil {
		return Catalog{}, 0, err
	}
	if len(catalog.Techniques) == 0 {
		return Catalog{}, 0, fmt.Errorf("cached catalog yielded no techniques")
	}
	return catalog, skipped, nil
}

func (l *Loader) loadEmbedded(context.Context) (Catalog, int, error) {
	catalog, err := EmbeddedCatalog()
	if err != nil {
		return Catalog{}, 0, err
	}
	return catalog, 0, nil
}
