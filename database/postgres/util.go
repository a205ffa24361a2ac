package postgres

import (
	"os"
	"strings"
)

// splitTableName returns schema and table of a possibly qualified name.
func splitTableName(name string) (string, string) {
	if name == "" {
		return "public", DefaultTable
	}
	if i := strings.Index(name, "."); i >= 0 {
		schema, table := name[:i], name[i+1:]
		if schema == "" {
			schema = "public"
		}
		if table == "" {
			table = DefaultTable
		}
		return schema, table
	}
	return "public", name
}

func disableDefaultSslOnLocalhost(params string) string {
	parts := strings.Fields(params)
	isLocalHost := false
	for _, p := range parts {
		if strings.HasPrefix(p, "sslmode=") {
			return params
		}
		if p == "host=localhost" || p == "host=127.0.0.1" {
			isLocalHost = true
		}
	}

	if !isLocalHost {
		return params
	}

	if _, ok := os.LookupEnv("PGSSLMODE"); ok {
		return params
	}

	// found localhost but explicit no sslmode, disable sslmode
	return params + " sslmode=disable"
}
