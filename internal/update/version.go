package update

import (
	"strconv"
	"strings"
)

// CompareVersions compares two dotted-numeric version strings component by
// component, left to right. Missing trailing components count as 0 and
// non-numeric components also count as 0, so "5.10.0" sorts after "5.9.9"
// the way version numbers do, not the way strings do.
func CompareVersions(a, b string) int {
	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")

	length := len(partsA)
	if len(partsB) > length {
		length = len(partsB)
	}
	for i := 0; i < length; i++ {
		numA := component(partsA, i)
		numB := component(partsB, i)
		if numA != numB {
			if numA > numB {
				return 1
			}
			return -1
		}
	}
	return 0
}

// IsNewer reports whether staged is strictly newer than installed
func IsNewer(staged, installed string) bool {
	return CompareVersions(staged, installed) > 0
}

func component(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return n
}
