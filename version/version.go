package version

import (
	"strconv"
	"strings"
)

// Ordering is the result of comparing a local version against a remote one
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return "equal"
	}
}

// Compare reports how local orders against remote, component by component.
//
// Only local's components are walked. A remote component at the same index is
// compared numerically and the first difference decides. When every compared
// pair is equal the component counts decide, so "1.2.0" is Greater than "1.2"
// and "1.2" is Less than "1.2.0". Non-numeric components count as 0.
func Compare(local, remote string) Ordering {
	l := strings.Split(local, ".")
	r := strings.Split(remote, ".")

	for i, part := range l {
		if i >= len(r) {
			continue
		}
		ln, rn := component(part), component(r[i])
		if ln < rn {
			return Less
		}
		if ln > rn {
			return Greater
		}
	}

	switch {
	case len(l) > len(r):
		return Greater
	case len(l) < len(r):
		return Less
	default:
		return Equal
	}
}

// IsNewer reports whether remote is strictly newer than local
func IsNewer(local, remote string) bool {
	return Compare(local, remote) == Less
}

func component(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
