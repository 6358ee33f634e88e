package repositories

import (
	"strings"
)

// concertBatchSize bounds the number of concert rows written per
// transaction, mirroring hosted-database payload limits.
const concertBatchSize = 500

// userArtistPageSize is the page size used when walking a user's artist
// library. Hosted stores cap result sets around this size, so large
// libraries span multiple pages.
const userArtistPageSize = 1000

// placeholders builds a "?, ?, ?" list for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
