package clienthub

import "sort"

// PluginCandidate describes one registered plugin instance as surfaced
// by the Types Registry (GTS) for a given capability schema. The hub
// itself knows nothing about vendors or priorities — this is the
// standardized selection algorithm a gateway module runs *before*
// calling GetScoped, per spec §4.2.
type PluginCandidate struct {
	ScopeKey string
	Vendor   string
	Priority int
}

// SelectPlugin filters candidates to the configured vendor and returns
// the lowest-priority match (ties broken by ScopeKey for determinism).
// It returns ok=false if no candidate matches the vendor.
func SelectPlugin(candidates []PluginCandidate, vendor string) (PluginCandidate, bool) {
	var matches []PluginCandidate

	for _, c := range candidates {
		if c.Vendor == vendor {
			matches = append(matches, c)
		}
	}

	if len(matches) == 0 {
		return PluginCandidate{}, false
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Priority != matches[j].Priority {
			return matches[i].Priority < matches[j].Priority
		}

		return matches[i].ScopeKey < matches[j].ScopeKey
	})

	return matches[0], true
}
