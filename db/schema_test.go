package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monetary columns must not carry a NUMERIC scale: a scale-2 column would
// round tax and totals on insert, so an order read back from the database
// would differ from the record checkout persisted. Rounding happens only at
// the response boundary.
func TestSchema_MonetaryColumnsUnconstrained(t *testing.T) {
	require.NotEmpty(t, Schema)

	for _, col := range []string{"price", "discount_price", "subtotal", "shipping", "tax", "total"} {
		found := false
		for _, line := range strings.Split(Schema, "\n") {
			fields := strings.Fields(line)
			if len(fields) < 2 || fields[0] != col {
				continue
			}
			found = true
			typ := strings.TrimSuffix(fields[1], ",")
			assert.Equal(t, "NUMERIC", typ, "column %s must be unconstrained NUMERIC", col)
		}
		assert.True(t, found, "column %s not found in schema", col)
	}
}
