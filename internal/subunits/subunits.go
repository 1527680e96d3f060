// Package subunits loads the business subunit reference table and keeps a
// read-through cache of it.
package subunits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cleared-dev/coa/internal/model"
	"github.com/cleared-dev/coa/internal/tablestore"
)

// Column names of the business subunit table.
const (
	ColID   = "PK_BUSINESS_SUBUNIT"
	ColName = "NAME_BUSINESS_SUBUNIT"
)

// DefaultTTL matches how long the reference table is trusted before a reload.
const DefaultTTL = 5 * time.Minute

const cacheKey = "business_subunits"

// FromTable converts a stored table into subunits. The id column is required.
func FromTable(t *tablestore.Table) ([]model.BusinessSubunit, error) {
	idCol, nameCol := -1, -1
	for i, c := range t.Columns {
		switch strings.ToUpper(strings.TrimSpace(c)) {
		case ColID:
			idCol = i
		case ColName:
			nameCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("business subunit table has no %s column", ColID)
	}

	subs := make([]model.BusinessSubunit, 0, len(t.Rows))
	for _, row := range t.Rows {
		var s model.BusinessSubunit
		if idCol < len(row) {
			s.ID = strings.TrimSpace(row[idCol])
		}
		if nameCol >= 0 && nameCol < len(row) {
			s.Name = row[nameCol]
		}
		subs = append(subs, s)
	}
	return subs, nil
}

// ToTable converts subunits into a storable table.
func ToTable(subs []model.BusinessSubunit) *tablestore.Table {
	t := &tablestore.Table{Columns: []string{ColID, ColName}}
	for _, s := range subs {
		t.Rows = append(t.Rows, []string{s.ID, s.Name})
	}
	return t
}

// IDs returns the distinct subunit ids in table order.
func IDs(subs []model.BusinessSubunit) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, s := range subs {
		if !seen[s.ID] {
			seen[s.ID] = true
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Source fetches the business subunit table.
type Source interface {
	Subunits(ctx context.Context) ([]model.BusinessSubunit, error)
}

// StoreSource reads the table from a table store.
type StoreSource struct {
	Store tablestore.Store
	Table string
}

// Subunits reads and decodes the table.
func (s StoreSource) Subunits(ctx context.Context) ([]model.BusinessSubunit, error) {
	t, err := s.Store.Read(ctx, s.Table)
	if err != nil {
		return nil, fmt.Errorf("loading business subunits: %w", err)
	}
	return FromTable(t)
}

// Cache serves the table from memory until the TTL expires.
type Cache struct {
	src   Source
	items *cache.Cache
}

// NewCache wraps a Source. A non-positive ttl uses DefaultTTL.
func NewCache(src Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{src: src, items: cache.New(ttl, 2*ttl)}
}

// Subunits returns the cached table, fetching it on a miss. Fetch errors are not cached.
func (c *Cache) Subunits(ctx context.Context) ([]model.BusinessSubunit, error) {
	if v, found := c.items.Get(cacheKey); found {
		return v.([]model.BusinessSubunit), nil
	}

	subs, err := c.src.Subunits(ctx)
	if err != nil {
		return nil, err
	}
	c.items.Set(cacheKey, subs, cache.DefaultExpiration)
	return subs, nil
}

// Refresh drops the cached table so the next call fetches it again.
func (c *Cache) Refresh() {
	c.items.Delete(cacheKey)
}
