package refnum

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^RFQ-[0-9A-Z]+-[0-9A-Z]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ref := Generate("RFQ")
		require.Regexp(t, pattern, ref)
		seen[ref] = true
	}
	// Collisions within a tight loop should be vanishingly rare.
	require.Greater(t, len(seen), 190)
}

func TestGeneratePrefixes(t *testing.T) {
	require.Regexp(t, `^BID-`, Generate("BID"))
	require.Regexp(t, `^ORD-`, Generate("ORD"))
	require.Regexp(t, `^PAY-`, Generate("PAY"))
}
