// File: utils/constants.go
package utils

import "time"

// Redis key prefixes.
const (
	ServiceCachePrefix    = "catalog:service:"
	SpecialistCachePrefix = "catalog:specialist:"
	StatsCachePrefix      = "stats:"
	StatsVersionPrefix    = "stats:ver:"
)

// CatalogCacheTTL is the time-to-live for catalog cache entries.
const CatalogCacheTTL = 5 * time.Minute
