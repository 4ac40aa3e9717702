package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ilhamdjango/ecommerce-core/internal/openapi"
)

const discoveryTimeout = 10 * time.Second

// ConflictPolicy decides which service wins when two backends publish the
// same (method, path) pair.
type ConflictPolicy string

const (
	ConflictLastWins  ConflictPolicy = "last-wins"
	ConflictFirstWins ConflictPolicy = "first-wins"
)

type DiscoveryStatus string

const (
	DiscoveryPending DiscoveryStatus = "pending"
	DiscoveryFetched DiscoveryStatus = "fetched"
	DiscoveryFailed  DiscoveryStatus = "failed"
)

// Aggregator fetches every backend's route manifest at startup and merges
// them into one routable surface and one combined API description. Discovery
// runs exactly once; a backend that comes up later stays unreachable until
// the gateway restarts.
type Aggregator struct {
	registry *Registry
	client   *http.Client
	policy   ConflictPolicy
	logger   *slog.Logger
}

func NewAggregator(registry *Registry, client *http.Client, policy ConflictPolicy, logger *slog.Logger) *Aggregator {
	if client == nil {
		client = &http.Client{Timeout: discoveryTimeout}
	}
	if policy == "" {
		policy = ConflictLastWins
	}
	return &Aggregator{
		registry: registry,
		client:   client,
		policy:   policy,
		logger:   logger,
	}
}

// DiscoveryResult is the immutable outcome of startup discovery.
type DiscoveryResult struct {
	Routes *RouteTable
	Doc    *openapi.Document
	Status map[string]DiscoveryStatus
}

// Degraded reports whether any backend was skipped during discovery.
func (r *DiscoveryResult) Degraded() bool {
	for _, status := range r.Status {
		if status != DiscoveryFetched {
			return true
		}
	}
	return false
}

// Discover fetches all manifests concurrently, then merges them in the
// registry's configured order so collision resolution is deterministic.
// Backends that fail to respond are skipped with a warning, never fatal.
func (a *Aggregator) Discover(ctx context.Context) *DiscoveryResult {
	names := a.registry.Names()
	docs := make([]*openapi.Document, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docs[i], errs[i] = a.fetchManifest(ctx, name)
		}()
	}
	wg.Wait()

	result := &DiscoveryResult{
		Routes: NewRouteTable(),
		Doc: openapi.NewDocument(
			"Ecommerce Gateway",
			"1.0.0",
			"Combined API description of all backend services",
		),
		Status: make(map[string]DiscoveryStatus, len(names)),
	}
	result.Doc.Components = &openapi.Components{Schemas: make(map[string]json.RawMessage)}

	collected := make(map[string]*Route) // "METHOD path" -> winning route

	for i, name := range names {
		if errs[i] != nil {
			a.logger.Warn("skipping service during discovery", "service", name, "error", errs[i])
			result.Status[name] = DiscoveryFailed
			continue
		}
		result.Status[name] = DiscoveryFetched
		a.mergeService(result, collected, name, docs[i])
	}

	keys := make([]string, 0, len(collected))
	for key := range collected {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		result.Routes.Add(collected[key])
	}
	result.Routes.Freeze()

	a.logger.Info("discovery complete",
		"routes", result.Routes.Len(),
		"services", len(names),
		"degraded", result.Degraded(),
	)

	return result
}

func (a *Aggregator) fetchManifest(ctx context.Context, service string) (*openapi.Document, error) {
	base, _ := a.registry.BaseURL(service)

	ctx, cancel := context.WithTimeout(ctx, discoveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+openapi.WellKnownPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest endpoint returned status %d", resp.StatusCode)
	}

	var doc openapi.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &doc, nil
}

func (a *Aggregator) mergeService(result *DiscoveryResult, collected map[string]*Route, service string, doc *openapi.Document) {
	for path, item := range doc.Paths {
		for method, op := range item {
			method = strings.ToUpper(method)
			key := method + " " + path

			if existing, collided := collected[key]; collided {
				if a.policy == ConflictFirstWins {
					a.logger.Warn("route collision, keeping first", "route", key, "kept", existing.Service, "skipped", service)
					continue
				}
				a.logger.Warn("route collision, last wins", "route", key, "replaced", existing.Service, "winner", service)
			}

			summary := op.Summary
			if summary == "" {
				summary = fmt.Sprintf("%s %s", service, path)
			}

			collected[key] = &Route{
				Service:  service,
				Method:   method,
				Template: path,
				Summary:  summary,
			}

			op.Tags = []string{service}
			result.Doc.AddOperation(strings.ToLower(method), path, op)
		}
	}

	if doc.Components != nil {
		for name, schema := range doc.Components.Schemas {
			result.Doc.Components.Schemas[name] = schema
		}
	}
}
