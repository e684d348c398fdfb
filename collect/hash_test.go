package collect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dhcoder/gamedev-experiments/collect"
)

func TestHashFunctionsAreDeterministic(t *testing.T) {
	assert.Equal(t, collect.HashInt(12345), collect.HashInt(12345))
	assert.Equal(t, collect.HashInt32(-7), collect.HashInt32(-7))
	assert.Equal(t, collect.HashString("bullet"), collect.HashString("bullet"))
}

func TestHashStringSpreadsNearbyKeys(t *testing.T) {
	// Not a statistical test, just a guard against a degenerate hash that
	// maps close keys to one value.
	seen := map[int32]bool{}
	for _, s := range []string{"a", "b", "c", "aa", "ab", "ba", "abc", "acb"} {
		seen[collect.HashString(s)] = true
	}
	assert.Greater(t, len(seen), 6)
}

func TestCombineHashOrderMatters(t *testing.T) {
	assert.NotEqual(t, collect.CombineHash(1, 2), collect.CombineHash(2, 1))
	assert.Equal(t, collect.CombineHash(3, 4), collect.CombineHash(3, 4))
}
