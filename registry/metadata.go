package registry

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Metadata keys read when building a Descriptor.
const (
	KeyName    = "inventory.printer.name"
	KeyTitle   = "inventory.printer.title"
	KeyFormat  = "inventory.printer.format"
	KeyRanking = "service.ranking"
)

// Metadata is the raw property bag a discovery source attaches to a provider.
type Metadata map[string]any

// Clone returns a shallow copy of m.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Text returns the trimmed string value under key, or "" when the value is
// missing or not a string.
func (m Metadata) Text(key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// parseModes accepts a comma separated string or a list of strings and
// returns the known modes sorted and de-duplicated. Unknown values are
// dropped. The result is nil when no known mode remains.
func parseModes(v any) []Mode {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []Mode:
		for _, m := range t {
			raw = append(raw, string(m))
		}
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	var modes []Mode
	for _, s := range raw {
		if m, ok := ParseMode(s); ok {
			modes = append(modes, m)
		}
	}
	if len(modes) == 0 {
		return nil
	}
	slices.Sort(modes)
	return slices.Compact(modes)
}

// parseRank reads an integer ranking. Unsigned values beyond the int range
// are clamped to math.MaxInt. Anything else ranks 0.
func parseRank(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint:
		return clampRank(uint64(t))
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return clampRank(uint64(t))
	case uint64:
		return clampRank(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func clampRank(u uint64) int {
	if u > math.MaxInt {
		return math.MaxInt
	}
	return int(u)
}
