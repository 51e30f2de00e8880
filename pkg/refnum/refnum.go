package refnum

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const randomChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generate produces a human-facing reference number of the form
// PREFIX-<base36 millisecond timestamp>-<6 random base36 chars>,
// e.g. RFQ-LKJ3X8M2-A7Q4ZD. Unique enough for display identifiers;
// not a cryptographic ID.
func Generate(prefix string) string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	var b strings.Builder
	b.Grow(len(prefix) + len(ts) + 8)
	b.WriteString(prefix)
	b.WriteByte('-')
	b.WriteString(ts)
	b.WriteByte('-')
	for i := 0; i < 6; i++ {
		b.WriteByte(randomChars[rand.Intn(len(randomChars))])
	}
	return b.String()
}
