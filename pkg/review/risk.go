package review

import "strings"

// Risk ordinals produced by RiskOrdinal. Higher is more severe;
// RiskUnknown marks text that matched no known marker.
const (
	RiskHigh    = 3
	RiskMedium  = 2
	RiskLow     = 1
	RiskNone    = 0
	RiskUnknown = -1
)

// riskMarkers maps substring markers to ordinals. Rule authors write
// risk levels in English or Chinese ("高风险", "中风险", "低风险",
// "通过", "无风险"), so both marker sets are matched. Order matters:
// more severe markers are checked first so "medium-high" maps to high.
var riskMarkers = []struct {
	marker  string
	ordinal int
}{
	{"high", RiskHigh},
	{"高", RiskHigh},
	{"medium", RiskMedium},
	{"中", RiskMedium},
	{"low", RiskLow},
	{"低", RiskLow},
	{"pass", RiskNone},
	{"none", RiskNone},
	{"通过", RiskNone},
	{"无", RiskNone},
}

// RiskOrdinal maps free-form risk-level text to its ordinal. Matching
// is case-insensitive and substring-based; empty text and unrecognized
// text map to RiskUnknown.
func RiskOrdinal(text string) int {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return RiskUnknown
	}
	for _, m := range riskMarkers {
		if strings.Contains(t, m.marker) {
			return m.ordinal
		}
	}
	return RiskUnknown
}
