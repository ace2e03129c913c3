package ir

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashDeterministic(t *testing.T) {
	v := IRObject{
		"key":   IRString("age"),
		"op":    IRString("LESS_THAN"),
		"value": IRInt(16),
	}

	h1, err := ContentHash(DomainPredicate, v)
	require.NoError(t, err)
	h2, err := ContentHash(DomainPredicate, IRObject{
		"value": IRInt(16),
		"op":    IRString("LESS_THAN"),
		"key":   IRString("age"),
	})
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "key insertion order must not matter")
	assert.Len(t, h1, 64)
	_, err = hex.DecodeString(h1)
	assert.NoError(t, err)
}

func TestContentHashChangesWithContent(t *testing.T) {
	a := mustHash(t, DomainPredicate, IRArray{IRString("age"), IRInt(16)})
	b := mustHash(t, DomainPredicate, IRArray{IRString("age"), IRInt(17)})
	assert.NotEqual(t, a, b)
}

func TestContentHashNumericForms(t *testing.T) {
	// 16 and 16.0 have the same canonical form.
	assert.Equal(t,
		mustHash(t, DomainPredicate, IRInt(16)),
		mustHash(t, DomainPredicate, IRFloat(16)))
}

func TestContentHashDomainSeparation(t *testing.T) {
	v := IRString("Black Panther")
	assert.NotEqual(t,
		mustHash(t, DomainPredicate, v),
		mustHash(t, DomainQuery, v))
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	// "ab" + 0x00 + "c" must differ from "a" + 0x00 + "bc".
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestContentHashError(t *testing.T) {
	_, err := ContentHash(DomainQuery, IRFloat(math.NaN()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content hash")

	_, err = ContentHash(DomainPredicate, IRArray{IRFloat(math.Inf(1))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[0]")
}

func mustHash(t *testing.T, d Domain, v IRValue) string {
	t.Helper()
	h, err := ContentHash(d, v)
	require.NoError(t, err)
	return h
}
