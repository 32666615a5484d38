package handlers

import (
	"aeriesbridge/internal/cache"
)

var appCache = &cache.Cache{}

// Init wires the handler package against the shared cache.
// Must run after db.Init.
func Init(c *cache.Cache) {
	if c != nil {
		appCache = c
	}
}
