package nearby

import (
	"sort"
	"strconv"
)

// SortServices returns a de-duplicated copy of services in display order.
// Names with a numeric prefix sort by that number first, so "2" comes
// before "10" and "10" before "10A"; other names sort lexically after them.
func SortServices(services []string) []string {
	seen := make(map[string]struct{}, len(services))
	out := make([]string, 0, len(services))
	for _, s := range services {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return serviceLess(out[i], out[j])
	})
	return out
}

func serviceLess(a, b string) bool {
	na, restA, okA := numericPrefix(a)
	nb, restB, okB := numericPrefix(b)
	switch {
	case okA && okB:
		if na != nb {
			return na < nb
		}
		return restA < restB
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}

func numericPrefix(s string) (int, string, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, s, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, s, false
	}
	return n, s[end:], true
}
