// internal/ids/ids.go
package ids

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Alphabet is the character set of generated codes: digits and upper-case letters.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const (
	MemberCodeLength  = 5
	PaymentCodeLength = 6
	PaymentPrefix     = "PAY"
)

// CodeFunc returns n characters drawn from Alphabet.
type CodeFunc func(n int) string

// RandomCode draws n characters from Alphabet using crypto/rand.
func RandomCode(n int) string {
	max := big.NewInt(int64(len(Alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("ids: crypto/rand unavailable: " + err.Error())
		}
		b.WriteByte(Alphabet[idx.Int64()])
	}
	return b.String()
}

// Member builds a member id such as "UF-7K2QZ".
func Member(prefix string, code CodeFunc) string {
	return strings.ToUpper(prefix) + "-" + code(MemberCodeLength)
}

// Payment builds a payment id such as "PAY-0A9XYZ".
func Payment(code CodeFunc) string {
	return PaymentPrefix + "-" + code(PaymentCodeLength)
}

// Normalize trims and upper-cases a user-typed id so lookups ignore case and padding.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Sequence returns a CodeFunc that cycles through the given codes.
// It is meant for tests and seeded demo data.
func Sequence(codes ...string) CodeFunc {
	i := 0
	return func(n int) string {
		c := codes[i%len(codes)]
		i++
		if len(c) > n {
			return c[:n]
		}
		return c
	}
}
