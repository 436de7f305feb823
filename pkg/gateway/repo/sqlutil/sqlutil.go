// Package sqlutil holds statement helpers shared by the SQL stores.
package sqlutil

import (
	"regexp"

	"github.com/tendant/simple-gateway/pkg/gateway"
)

var returningID = regexp.MustCompile(`(?is)\bRETURNING\s+\w+\s*;?\s*$`)

// HasReturning reports whether a statement ends with a "RETURNING <column>" clause.
func HasReturning(query string) bool {
	return returningID.MatchString(query)
}

// Normalize converts driver byte slices to strings so rows compare and
// encode the same way across drivers.
func Normalize(row map[string]any) gateway.Row {
	out := make(gateway.Row, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			out[k] = string(b)
			continue
		}
		out[k] = v
	}
	return out
}
