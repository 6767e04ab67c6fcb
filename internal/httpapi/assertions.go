package httpapi

import (
	"github.com/adilkt/fleetbook/internal/storage/memory"
	"github.com/adilkt/fleetbook/internal/storage/postgres"
)

// Compile-time checks that the stores satisfy the API's storage surface.
var (
	_ Store = (*memory.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)
