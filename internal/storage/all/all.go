// Package all registers every storage backend. Import it for side effects
// from binaries; libraries and tests import only the backends they need.
package all

import (
	_ "flightdw/internal/storage/mssql"
	_ "flightdw/internal/storage/postgres"
	_ "flightdw/internal/storage/sqlite"
)
