package redis

import (
	"strconv"
	"strings"
)

// supportsScan reports whether a server version string is 2.8 or newer,
// the first release with SCAN/HSCAN. Unparseable versions count as modern.
func supportsScan(version string) bool {
	if version == "" {
		return true
	}
	major, rest, _ := strings.Cut(version, ".")
	minor, _, _ := strings.Cut(rest, ".")
	ma, err := strconv.Atoi(major)
	if err != nil {
		return true
	}
	mi, err := strconv.Atoi(minor)
	if err != nil {
		mi = 0
	}
	return ma > 2 || (ma == 2 && mi >= 8)
}
