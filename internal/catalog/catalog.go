// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package catalog provides the list of selectable target countries.
package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/ManuGH/locflow/internal/domain/workflow/model"
	"github.com/ManuGH/locflow/internal/domain/workflow/ports"
	"github.com/ManuGH/locflow/internal/log"
)

// static is the built-in list; backend data only overrides Name and Language.
var static = []model.Country{
	{Code: "TR", Name: "Türkiye", Language: "tr"},
	{Code: "DE", Name: "Germany", Language: "de"},
	{Code: "US", Name: "United States", Language: "en"},
	{Code: "GB", Name: "United Kingdom", Language: "en"},
	{Code: "FR", Name: "France", Language: "fr"},
	{Code: "ES", Name: "Spain", Language: "es"},
	{Code: "IT", Name: "Italy", Language: "it"},
	{Code: "NL", Name: "Netherlands", Language: "nl"},
	{Code: "JP", Name: "Japan", Language: "ja"},
	{Code: "KR", Name: "South Korea", Language: "ko"},
	{Code: "BR", Name: "Brazil", Language: "pt"},
	{Code: "MX", Name: "Mexico", Language: "es"},
	{Code: "SA", Name: "Saudi Arabia", Language: "ar"},
	{Code: "AE", Name: "United Arab Emirates", Language: "ar"},
}

func init() {
	for i := range static {
		static[i].Flag = Flag(static[i].Code)
	}
}

// Static returns a copy of the built-in list.
func Static() []model.Country {
	return slices.Clone(static)
}

// Flag renders a country code as its regional-indicator emoji.
func Flag(code string) string {
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}

// DisplayName returns the English region name for code, or "" when unknown.
func DisplayName(code string) string {
	region, err := language.ParseRegion(strings.ToUpper(code))
	if err != nil {
		return ""
	}
	return display.English.Regions().Name(region)
}

// Source is the backend catalog endpoint.
type Source interface {
	GetCountries(ctx context.Context, groupByLanguage bool) ([]ports.CatalogEntry, error)
}

// failureTTL is how long a failed enrichment is remembered before the
// backend is asked again.
const failureTTL = 30 * time.Second

// Catalog merges the static list with backend data. Concurrent refreshes
// share one backend call; failures keep the previous list.
type Catalog struct {
	src        Source
	ttl        time.Duration
	failureTTL time.Duration

	group     singleflight.Group
	mu        sync.RWMutex
	countries []model.Country
	// validUntil is the next refresh time, after a success or a failure.
	validUntil time.Time
}

// New returns a catalog. A nil src serves the static list only.
func New(src Source, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Catalog{src: src, ttl: ttl, failureTTL: min(failureTTL, ttl), countries: Static()}
}

func (c *Catalog) freshLocked() bool {
	return time.Now().Before(c.validUntil)
}

// List returns the selectable countries, refreshing from the backend when stale.
func (c *Catalog) List(ctx context.Context) []model.Country {
	c.mu.RLock()
	fresh := c.freshLocked()
	current := slices.Clone(c.countries)
	c.mu.RUnlock()

	if c.src == nil || fresh {
		return current
	}

	v, err, _ := c.group.Do("countries", func() (any, error) {
		c.mu.RLock()
		if c.freshLocked() {
			cached := slices.Clone(c.countries)
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		entries, err := c.src.GetCountries(ctx, true)
		if err != nil {
			c.mu.Lock()
			c.validUntil = time.Now().Add(c.failureTTL)
			c.mu.Unlock()
			return nil, err
		}
		merged := Merge(static, entries)
		c.mu.Lock()
		c.countries = merged
		c.validUntil = time.Now().Add(c.ttl)
		c.mu.Unlock()
		return merged, nil
	})
	if err != nil {
		logger := log.WithComponentFromContext(ctx, "catalog")
		logger.Debug().Err(err).Msg("country catalog enrichment failed, using static list")
		return current
	}
	return slices.Clone(v.([]model.Country))
}

// Lookup finds a country by code, case-insensitively.
func (c *Catalog) Lookup(ctx context.Context, code string) (model.Country, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, country := range c.List(ctx) {
		if country.Code == code {
			return country, true
		}
	}
	return model.Country{}, false
}

// Merge overlays backend entries on base by code. Backend-only countries
// are not added: the static list defines what is selectable. Countries left
// without a name get the English region name.
func Merge(base []model.Country, entries []ports.CatalogEntry) []model.Country {
	byCode := make(map[string]ports.CatalogEntry, len(entries))
	for _, e := range entries {
		byCode[strings.ToUpper(strings.TrimSpace(e.Code))] = e
	}
	out := slices.Clone(base)
	for i, c := range out {
		if c.Name == "" {
			out[i].Name = DisplayName(c.Code)
		}
		e, ok := byCode[c.Code]
		if !ok {
			continue
		}
		if name := strings.TrimSpace(e.Name); name != "" {
			out[i].Name = name
		}
		if lang := strings.TrimSpace(e.Language); lang != "" {
			if tag, err := language.Parse(lang); err == nil {
				out[i].Language = tag.String()
			}
		}
	}
	return out
}
