// Package version defines the total order over agent version strings.
//
// Versions that parse as semantic versions compare numerically and always
// rank above versions that do not; everything else falls back to
// lexicographic comparison. A leading "v" is tolerated when parsing but
// never stripped from the stored string. The same rule applies to every
// agent; ordering is never inferred per agent.
package version

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Compare returns -1 if a orders before b, 1 if after, and 0 when equal.
// The order is total: any two distinct strings compare deterministically.
func Compare(a, b string) int {
	va, errA := semver.NewVersion(strings.TrimPrefix(a, "v"))
	vb, errB := semver.NewVersion(strings.TrimPrefix(b, "v"))

	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
		// Distinct spellings of the same semver ("1.2.0" vs "v1.2.0")
		// still need a deterministic order.
		return strings.Compare(a, b)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}

// Latest returns the maximum version under Compare, or "" for an empty set.
func Latest(versions []string) string {
	latest := ""
	for i, v := range versions {
		if i == 0 || Compare(v, latest) > 0 {
			latest = v
		}
	}
	return latest
}

// Sort orders versions ascending under Compare, in place.
func Sort(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}

// Sorted returns a new ascending-ordered copy.
func Sorted(versions []string) []string {
	out := make([]string, len(versions))
	copy(out, versions)
	Sort(out)
	return out
}

// Descending returns a new copy ordered newest first.
func Descending(versions []string) []string {
	out := Sorted(versions)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
