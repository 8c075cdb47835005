package snippets

import (
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/span/internal/frontmatter"
)

// Params is the parameter mapping a snippet is resolved against.
type Params map[string]any

// With returns a copy of p with the entries of over applied on top.
func (p Params) With(over map[string]any) Params {
	res := maps.Clone(p)
	if res == nil {
		res = Params{}
	}
	maps.Copy(res, over)
	return res
}

// Lookup follows a dotted key chain. A segment that is a valid index into
// a sequence selects that element; otherwise it names a mapping field. A
// missing or null value is a ResolveError naming the failing segment.
func (p Params) Lookup(chain string) (any, error) {
	var cur any = map[string]any(p)
	for _, seg := range strings.Split(chain, ".") {
		next, ok := step(untag(cur), seg)
		if !ok || next == nil {
			return nil, &ResolveError{Chain: chain, Segment: seg}
		}
		cur = next
	}
	return untag(cur), nil
}

// Resolve looks up chain and renders the value as text.
func (p Params) Resolve(chain string) (string, error) {
	v, err := p.Lookup(chain)
	if err != nil {
		return "", err
	}
	return Stringify(chain, v)
}

func step(cur any, seg string) (any, bool) {
	if seq, ok := cur.([]any); ok {
		if idx, err := strconv.Atoi(seg); err == nil {
			if idx < 0 || idx >= len(seq) {
				return nil, false
			}
			return seq[idx], true
		}
	}
	switch m := cur.(type) {
	case map[string]any:
		v, ok := m[seg]
		return v, ok
	case Params:
		v, ok := m[seg]
		return v, ok
	}
	return nil, false
}

func untag(v any) any {
	for {
		t, ok := v.(frontmatter.Tagged)
		if !ok {
			return v
		}
		v = t.Value
	}
}

// Stringify renders a scalar value. Sequences and mappings cannot be
// rendered and yield a ResolveError.
func Stringify(chain string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return formatFloat(x), nil
	case []any:
		return "", &ResolveError{Chain: chain, Kind: "sequence", Value: x}
	case map[string]any, Params:
		return "", &ResolveError{Chain: chain, Kind: "mapping", Value: x}
	case frontmatter.Tagged:
		return Stringify(chain, untag(x))
	default:
		return fmt.Sprint(x), nil
	}
}

// formatFloat prints the shortest representation of x the way YAML emitters
// do: integral values keep a ".0", very large or small magnitudes switch to
// exponent form ("1e21", "1.5e-7").
func formatFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return ".nan"
	case math.IsInf(x, 1):
		return ".inf"
	case math.IsInf(x, -1):
		return "-.inf"
	}
	e := strconv.FormatFloat(x, 'e', -1, 64)
	mant, exp, _ := strings.Cut(e, "e")
	n, _ := strconv.Atoi(exp)
	if x == 0 || (n >= -5 && n < 16) {
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return mant + "e" + strconv.Itoa(n)
}
