// Package vendors contains the pluggable vendor feed connectors. Each
// adapter knows its vendor's pagination scheme and field layout and maps
// raw feed items into the canonical IngestedDiamond record; the ingestion
// orchestrator only ever sees the Adapter contract.
package vendors

import (
	"context"
	"sort"
	"strings"

	"github.com/purecarat/diamond-backend/internal/types"
)

// RawItem is one undecoded vendor feed entry.
type RawItem map[string]interface{}

// Page is the normalized result of one vendor page fetch. TotalFound is 0
// when the vendor does not report a feed-wide count.
type Page struct {
	Items      []RawItem
	HasMore    bool
	TotalFound int
}

// Adapter abstracts all vendor-specific logic.
type Adapter interface {
	// Source is the vendor tag stored on ingested records.
	Source() string

	// FetchPage fetches one page of the vendor feed. Page numbers start
	// at 1. Implementations rate-limit themselves between calls.
	FetchPage(ctx context.Context, page int) (Page, error)

	// MapItem converts one raw feed item into a canonical record. It is
	// pure: identical input always yields identical output, and a record
	// that cannot be fully normalized comes back nil, never partial.
	MapItem(item RawItem, storeID string) *types.IngestedDiamond
}

// Registry is the fixed set of registered adapters, looked up by vendor
// name at call time.
type Registry struct {
	byName map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byName: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.byName[strings.ToLower(a.Source())] = a
	}
	return r
}

func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

func (r *Registry) Sources() []string {
	out := make([]string, 0, len(r.byName))
	for _, a := range r.byName {
		out = append(out, a.Source())
	}
	sort.Strings(out)
	return out
}
