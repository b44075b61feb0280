// Package search runs registry searches and returns the records found.
package search

import (
	"context"

	"github.com/hyperifyio/qkbleads/internal/registry"
)

// Query is one registry search: a sector keyword within a city and an
// optional region.
type Query struct {
	Keyword string
	City    string
	Region  string
}

// Provider is a source of registry records.
type Provider interface {
	Search(ctx context.Context, q Query) ([]registry.RawRecord, error)
	Name() string
}
