package domain

import (
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// canonicalVersion maps loose version labels ("2", "v2", "0.1.0", "V1.2") onto
// the "v"-prefixed form understood by semver.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")
	return "v" + v
}

// CompareVersions orders two version labels.
//
// Labels are compared as semantic versions after normalizing the leading "v",
// so "v2" < "v10" and "0.1.0" < "v1". Labels that are not valid versions sort
// before valid ones. Equal-ranking labels fall back to byte order, which keeps
// the ordering total.
func CompareVersions(a, b string) int {
	if c := semver.Compare(canonicalVersion(a), canonicalVersion(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortVersions sorts versions in place, ascending.
func SortVersions(versions []string) {
	slices.SortFunc(versions, CompareVersions)
}
