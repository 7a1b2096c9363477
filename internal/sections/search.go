package sections

import (
	"sort"
	"strings"
)

// Match is one command palette result.
type Match struct {
	Section Section
	// MatchedOn is the id, title or alias that produced the score.
	MatchedOn string
	Score     int
}

const (
	scoreSummary = iota + 1
	scoreSubstring
	scorePrefix
	scoreExact
)

// Search ranks sections against a palette query. Exact id or alias matches
// beat prefix matches, which beat substring matches anywhere in the id, title
// or an alias; a hit in the summary ranks last. Ties keep catalogue order. An
// empty query lists every section. limit <= 0 means no limit.
func Search(table *AliasTable, query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))

	var aliases map[Section][]string
	if table != nil {
		aliases = make(map[Section][]string)
		for alias, s := range table.Snapshot() {
			aliases[s] = append(aliases[s], alias)
		}
		for _, list := range aliases {
			sort.Strings(list)
		}
	}

	var matches []Match
	for _, s := range All() {
		if q == "" {
			matches = append(matches, Match{Section: s, MatchedOn: s.String()})
			continue
		}

		best := Match{Section: s}
		consider := func(candidate string, exactAllowed bool) {
			c := strings.ToLower(candidate)
			score := 0
			switch {
			case exactAllowed && c == q:
				score = scoreExact
			case strings.HasPrefix(c, q):
				score = scorePrefix
			case strings.Contains(c, q):
				score = scoreSubstring
			}
			if score > best.Score {
				best.Score = score
				best.MatchedOn = candidate
			}
		}

		consider(s.String(), true)
		consider(s.Title(), false)
		for _, alias := range aliases[s] {
			consider(alias, true)
		}
		if best.Score == 0 && strings.Contains(strings.ToLower(s.Summary()), q) {
			best.Score = scoreSummary
			best.MatchedOn = s.Summary()
		}

		if best.Score > 0 {
			matches = append(matches, best)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
