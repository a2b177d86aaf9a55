package utils

// ShortHashLen is the number of hash characters shown in text output.
const ShortHashLen = 12

// ShortHash abbreviates a revision hash for display.
func ShortHash(h string) string {
	if len(h) <= ShortHashLen {
		return h
	}
	return h[:ShortHashLen]
}
