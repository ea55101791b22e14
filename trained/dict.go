package trained

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kestrelfmt/agon/tokencount"
)

// maybeUpgradeDict decides whether a uniformly-string field should
// become a "dict" field (spec §4.9's dictionary upgrade): rank values by
// frequency, keep only safe entries admitted at freq >= 2 up to
// maxDictPerField, and upgrade only if the summed per-use token saving
// net of the amortized prompt cost clears minGain. Returns nil (no
// upgrade) when no entry qualifies or the net gain is insufficient.
func maybeUpgradeDict(key string, vals []Value, settings trainSettings) []string {
	freq := map[string]int{}
	var order []string
	for _, v := range vals {
		if _, ok := freq[v.Str]; !ok {
			order = append(order, v.Str)
		}
		freq[v.Str]++
	}

	type candidate struct {
		s string
		n int
	}
	var candidates []candidate
	for _, s := range order {
		n := freq[s]
		if n < 2 {
			continue
		}
		if settings.enumLikeOnly && (len(s) > settings.maxEnumLen || strings.ContainsAny(s, "\n\r\t")) {
			continue
		}
		candidates = append(candidates, candidate{s, n})
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].n > candidates[j].n })
	if len(candidates) > settings.maxDictPerField {
		candidates = candidates[:settings.maxDictPerField]
	}

	entries := make([]string, len(candidates))
	var savings, entryTokens float64
	for i, c := range candidates {
		entries[i] = c.s
		literal := countTokens(c.s, settings.encoding)
		pointer := countTokens(strconv.Itoa(-(i+1)), settings.encoding)
		savings += float64(literal-pointer) * float64(c.n)
		entryTokens += float64(countTokens(c.s, settings.encoding))
	}
	promptCost := (float64(countTokens(key, settings.encoding)) + entryTokens + float64(len(entries)) + 4) / settings.amortize
	if savings-promptCost < settings.minGain {
		return nil
	}
	return entries
}

func countTokens(s, encoding string) int {
	n, err := tokencount.Count(s, encoding)
	if err != nil {
		return len(s)
	}
	return n
}
