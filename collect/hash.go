package collect

// Hash functions for common key types. An ArrayMap takes any func(K) int32;
// these cover the keys the rest of the library uses. Hashes are allowed to be
// negative - the map coerces them non-negative before indexing.

// HashInt hashes an integer key by truncation.
func HashInt(v int) int32 {
	return int32(v)
}

// HashInt32 is the identity hash for int32 keys.
func HashInt32(v int32) int32 {
	return v
}

// HashString hashes a string key with 32-bit FNV-1a.
func HashString(s string) int32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return int32(h)
}

// CombineHash folds two hashes into one (31*a + b). Use it to build hashes
// for composite keys out of their field hashes.
func CombineHash(a, b int32) int32 {
	return 31*a + b
}
