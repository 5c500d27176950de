package maxsize

// SeqBytes returns the encoded size of a length-prefixed sequence holding at
// most count elements of at most elemSize bytes each.
func SeqBytes(count, elemSize int) (int, bool) {
	if count < 0 {
		return 0, false
	}
	data, ok := mul(count, elemSize)
	if !ok {
		return 0, false
	}
	return add(data, VarintSize(uint64(count)))
}

// MapBytes returns the encoded size of a length-prefixed map holding at most
// count entries.
func MapBytes(count, keySize, valSize int) (int, bool) {
	entry, ok := add(keySize, valSize)
	if !ok {
		return 0, false
	}
	return SeqBytes(count, entry)
}

// StringBytes returns the encoded size of a string or byte array of at most
// maxLen bytes: the length prefix plus the raw bytes.
func StringBytes(maxLen int) (int, bool) {
	return SeqBytes(maxLen, 1)
}

// The *Max helpers below take optional inputs and report unbounded whenever
// one is missing.

// SeqMax bounds a sequence given its element bound and declared maximum
// length.
func SeqMax(elemSize int, elemKnown bool, maxLen *int) (int, bool) {
	if !elemKnown || maxLen == nil {
		return 0, false
	}
	return SeqBytes(*maxLen, elemSize)
}

// MapMax bounds a map given its key and value bounds and declared maximum
// entry count.
func MapMax(keySize int, keyKnown bool, valSize int, valKnown bool, maxLen *int) (int, bool) {
	if !keyKnown || !valKnown || maxLen == nil {
		return 0, false
	}
	return MapBytes(*maxLen, keySize, valSize)
}

// StringMax bounds a string or byte array given its declared maximum length.
func StringMax(maxLen *int) (int, bool) {
	if maxLen == nil {
		return 0, false
	}
	return StringBytes(*maxLen)
}
