package report

import "strings"

// normalizeName folds a test name for matching. Matching is by name only;
// units are not checked for compatibility.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AnalyzeTrends compares the current test panel against the previous one and
// annotates each current record with its previous value and trend direction.
//
// The previous lookup is built by forward iteration, so when the previous
// panel repeats a name the later occurrence wins. Records whose value (on
// either side) fails to parse as a number are passed through unannotated;
// a bad value degrades only that comparison, never the whole merge. Output
// length and order always match the input panel.
func AnalyzeTrends(current, previous []TestRecord) []TestRecord {
	out := make([]TestRecord, len(current))
	copy(out, current)
	if len(out) == 0 || len(previous) == 0 {
		return out
	}

	prevByName := make(map[string]TestRecord, len(previous))
	for _, p := range previous {
		if key := normalizeName(p.Name); key != "" {
			prevByName[key] = p
		}
	}

	for i := range out {
		key := normalizeName(out[i].Name)
		if key == "" {
			continue
		}
		prev, ok := prevByName[key]
		if !ok {
			continue
		}
		cur, err := out[i].Value.Float()
		if err != nil {
			continue
		}
		pv, err := prev.Value.Float()
		if err != nil {
			continue
		}
		out[i].PreviousValue = &pv
		switch {
		case cur > pv:
			out[i].Trend = TrendIncreasing
		case cur < pv:
			out[i].Trend = TrendDecreasing
		default:
			out[i].Trend = TrendStable
		}
	}
	return out
}
