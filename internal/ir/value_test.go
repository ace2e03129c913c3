package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRFloat(7.3)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestIRObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "jacob", IRString("jacob")},
		{"bool", true, IRBool(true)},
		{"int", 12, IRInt(12)},
		{"int32", int32(-4), IRInt(-4)},
		{"uint16", uint16(9), IRInt(9)},
		{"float64", 7.3, IRFloat(7.3)},
		{"float32", float32(0.5), IRFloat(0.5)},
		{"json int", json.Number("2010"), IRInt(2010)},
		{"json float", json.Number("8.9"), IRFloat(8.9)},
		{"ir passthrough", IRString("x"), IRString("x")},
		{"string slice", []string{"IT", "Admin"}, IRArray{IRString("IT"), IRString("Admin")}},
		{"int array", [2]int{1, 2}, IRArray{IRInt(1), IRInt(2)}},
		{"mixed slice", []any{"a", 1, false}, IRArray{IRString("a"), IRInt(1), IRBool(false)}},
		{"nil slice", []string(nil), IRArray{}},
		{"map", map[string]any{"age": 16}, IRObject{"age": IRInt(16)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

type (
	score   float64
	watched bool
	tenth   float32
)

func TestFromAnyNamedKinds(t *testing.T) {
	got, err := FromAny(score(8.4))
	require.NoError(t, err)
	assert.Equal(t, IRFloat(8.4), got)

	got, err = FromAny(tenth(0.5))
	require.NoError(t, err)
	assert.Equal(t, IRFloat(0.5), got)

	got, err = FromAny(watched(true))
	require.NoError(t, err)
	assert.Equal(t, IRBool(true), got)

	got, err = FromAny([]score{7.2, 9})
	require.NoError(t, err)
	assert.Equal(t, IRArray{IRFloat(7.2), IRFloat(9)}, got)

	_, err = FromAny(score(math.Inf(-1)))
	assert.Error(t, err)
}

func TestFromAnyCopiesIRContainers(t *testing.T) {
	genres := IRArray{IRString("Comedy"), IRArray{IRString("Drama")}}
	got, err := FromAny(genres)
	require.NoError(t, err)
	genres[0] = IRString("Horror")
	genres[1].(IRArray)[0] = IRString("Western")
	assert.Equal(t, IRArray{IRString("Comedy"), IRArray{IRString("Drama")}}, got)

	obj := IRObject{"tags": IRArray{IRString("a")}}
	got, err = FromAny(obj)
	require.NoError(t, err)
	obj["tags"].(IRArray)[0] = IRString("b")
	obj["extra"] = IRInt(1)
	assert.Equal(t, IRObject{"tags": IRArray{IRString("a")}}, got)
}

func TestFromAnyRejects(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"NaN", math.NaN()},
		{"Inf", math.Inf(1)},
		{"uint64 overflow", uint64(math.MaxUint64)},
		{"struct", struct{}{}},
		{"nested bad", []any{1, struct{}{}}},
		{"channel", make(chan int)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromAny(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestToAnyRoundTrip(t *testing.T) {
	v := IRObject{
		"title":  IRString("Troy"),
		"rating": IRFloat(7.2),
		"year":   IRInt(2004),
		"tags":   IRArray{IRString("drama"), IRBool(true)},
	}

	plain := ToAny(v)
	back, err := FromAny(plain)
	require.NoError(t, err)
	assert.Equal(t, v, back)
	assert.Nil(t, ToAny(IRNull{}))
}

func TestString(t *testing.T) {
	assert.Equal(t, `"Black Panther"`, String(IRString("Black Panther")))
	assert.Equal(t, "7.3", String(IRFloat(7.3)))
	assert.Equal(t, "16", String(IRInt(16)))
	assert.Equal(t, "null", String(nil))
	assert.Equal(t, `["IT", "Admin"]`, String(IRArray{IRString("IT"), IRString("Admin")}))
	assert.Equal(t, `{a: 1, b: true}`, String(IRObject{"b": IRBool(true), "a": IRInt(1)}))
}

func TestIRObjectJSON(t *testing.T) {
	var obj IRObject
	require.NoError(t, json.Unmarshal([]byte(`{"name":"jacob","age":12,"score":1.5,"big":9007199254740993}`), &obj))

	assert.Equal(t, IRString("jacob"), obj["name"])
	assert.Equal(t, IRInt(12), obj["age"])
	assert.Equal(t, IRFloat(1.5), obj["score"])
	// Large integers must not lose precision through float64.
	assert.Equal(t, IRInt(9007199254740993), obj["big"])

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"age":12,"big":9007199254740993,"name":"jacob","score":1.5}`, string(data))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNull, KindOf(nil))
	assert.Equal(t, KindNull, KindOf(IRNull{}))
	assert.Equal(t, KindString, KindOf(IRString("")))
	assert.Equal(t, KindInt, KindOf(IRInt(0)))
	assert.Equal(t, KindFloat, KindOf(IRFloat(0)))
	assert.Equal(t, KindBool, KindOf(IRBool(false)))
	assert.Equal(t, KindArray, KindOf(IRArray{}))
	assert.Equal(t, KindObject, KindOf(IRObject{}))
	assert.True(t, IsNumeric(IRFloat(1)))
	assert.False(t, IsNumeric(IRString("1")))
}
