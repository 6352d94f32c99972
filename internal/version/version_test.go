package version

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		// Semver pairs compare numerically
		{"v1", "v2", -1},
		{"v2", "v1", 1},
		{"v9", "v10", -1},
		{"1.2.0", "1.10.0", -1},
		{"2.0.0", "2.0.0", 0},
		{"v1.2", "v1.2.1", -1},
		{"1.0.0-alpha", "1.0.0", -1},

		// Semver ranks above non-semver
		{"v1", "beta", 1},
		{"nightly", "0.0.1", -1},

		// Neither parses: lexicographic
		{"beta", "alpha", 1},
		{"build-a", "build-b", -1},
		{"nightly", "nightly", 0},

		// Distinct spellings of equal semver stay ordered
		{"1.2.0", "v1.2.0", -1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_vs_%s", tt.a, tt.b), func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLatest(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
	}{
		{"empty", nil, ""},
		{"single", []string{"v1"}, "v1"},
		{"numeric dominates", []string{"v1", "v10", "v9"}, "v10"},
		{"semver beats raw", []string{"nightly", "v0.1.0"}, "v0.1.0"},
		{"mixed formats", []string{"v1", "1.5.0", "v1.2"}, "1.5.0"},
		{"raw only", []string{"beta", "alpha"}, "beta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Latest(tt.versions); got != tt.want {
				t.Errorf("Latest(%v) = %q, want %q", tt.versions, got, tt.want)
			}
		})
	}
}

func TestSortAscending(t *testing.T) {
	versions := []string{"v10", "beta", "v2", "alpha", "1.0.0"}
	Sort(versions)

	want := []string{"alpha", "beta", "1.0.0", "v2", "v10"}
	for i := range want {
		if versions[i] != want[i] {
			t.Fatalf("Sort = %v, want %v", versions, want)
		}
	}
}

func TestDescending(t *testing.T) {
	got := Descending([]string{"v1", "v10", "v2"})
	want := []string{"v10", "v2", "v1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Descending = %v, want %v", got, want)
		}
	}
}

// versionGen draws version tokens spanning semver, v-prefixed, and raw formats.
func versionGen() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.Custom(func(rt *rapid.T) string {
			major := rapid.IntRange(0, 20).Draw(rt, "major")
			minor := rapid.IntRange(0, 20).Draw(rt, "minor")
			patch := rapid.IntRange(0, 20).Draw(rt, "patch")
			if rapid.Bool().Draw(rt, "vprefix") {
				return fmt.Sprintf("v%d.%d.%d", major, minor, patch)
			}
			return fmt.Sprintf("%d.%d.%d", major, minor, patch)
		}),
		rapid.Custom(func(rt *rapid.T) string {
			return fmt.Sprintf("v%d", rapid.IntRange(0, 99).Draw(rt, "n"))
		}),
		rapid.SampledFrom([]string{"nightly", "beta", "alpha", "latest-build", "rc", "snapshot"}),
	)
}

func TestCompareIsTotalOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := versionGen().Draw(rt, "a")
		b := versionGen().Draw(rt, "b")
		c := versionGen().Draw(rt, "c")

		// Reflexivity
		if Compare(a, a) != 0 {
			rt.Fatalf("Compare(%q, %q) != 0", a, a)
		}

		// Antisymmetry
		if Compare(a, b) != -Compare(b, a) {
			rt.Fatalf("Compare(%q, %q) = %d but Compare(%q, %q) = %d",
				a, b, Compare(a, b), b, a, Compare(b, a))
		}

		// Distinct strings never compare equal
		if a != b && Compare(a, b) == 0 {
			rt.Fatalf("distinct %q and %q compare equal", a, b)
		}

		// Transitivity
		if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
			rt.Fatalf("transitivity violated: %q <= %q <= %q but Compare(%q, %q) = %d",
				a, b, c, a, c, Compare(a, c))
		}
	})
}

func TestLatestMatchesSortedMax(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		versions := rapid.SliceOfN(versionGen(), 1, 10).Draw(rt, "versions")

		sorted := Sorted(versions)
		if got := Latest(versions); got != sorted[len(sorted)-1] {
			rt.Fatalf("Latest(%v) = %q, sorted max = %q", versions, got, sorted[len(sorted)-1])
		}
	})
}
