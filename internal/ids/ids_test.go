package ids

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMemberAndPaymentFormat(t *testing.T) {
	member := regexp.MustCompile(`^UF-[0-9A-Z]{5}$`)
	payment := regexp.MustCompile(`^PAY-[0-9A-Z]{6}$`)

	for i := 0; i < 200; i++ {
		assert.Regexp(t, member, Member("uf", RandomCode))
		assert.Regexp(t, payment, Payment(RandomCode))
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "UF-AB12C", Normalize("  uf-ab12c \t"))
	assert.Equal(t, "", Normalize("   "))
}

func TestSequenceCycles(t *testing.T) {
	code := Sequence("AAAAA", "BBBBBB")
	assert.Equal(t, "AAAAA", code(5))
	assert.Equal(t, "BBBBB", code(5))
	assert.Equal(t, "AAAAA", code(6))
}

func TestRandomCodeAlphabet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 32).Draw(t, "n")
		code := RandomCode(n)
		if len(code) != n {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), n)
		}
		for _, r := range code {
			if !regexp.MustCompile(`[0-9A-Z]`).MatchString(string(r)) {
				t.Fatalf("unexpected character %q in %q", r, code)
			}
		}
	})
}
