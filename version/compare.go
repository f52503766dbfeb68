package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type semver struct {
	major, minor, patch int
}

// parse reads "v1.2.3", "1.2" or "1.2.3-rc1". Missing parts are zero and
// pre-release suffixes are ignored.
func parse(s string) (semver, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	s, _, _ = strings.Cut(s, "-")

	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return semver{}, fmt.Errorf("invalid version %q", s)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return semver{}, fmt.Errorf("invalid version %q", s)
		}
		nums[i] = n
	}

	return semver{nums[0], nums[1], nums[2]}, nil
}

// Compare returns 1 if a > b, -1 if a < b and 0 if they are equal.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range []lo.Tuple2[int, int]{
		{A: av.major, B: bv.major},
		{A: av.minor, B: bv.minor},
		{A: av.patch, B: bv.patch},
	} {
		if pair.A > pair.B {
			return 1, nil
		}

		if pair.A < pair.B {
			return -1, nil
		}
	}

	return 0, nil
}
