package events

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/spellcore/types"
)

// SortedKeys returns the keys of an event payload in stable order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Format renders an event as a single line, e.g.
// "spell_go spell=133 caster=4 hits=1".
func Format(e types.Event) string {
	var b strings.Builder
	b.WriteString(e.Type)
	for _, k := range SortedKeys(e.Data) {
		if k == "cast_id" {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	return b.String()
}
