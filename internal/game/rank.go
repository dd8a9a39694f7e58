package game

import "sort"

// Rank returns the 1-based position of id among players sorted by score,
// highest first, and the number of players. Equal scores keep the order
// of the input slice. An unknown id yields ordinal 0.
func Rank(id string, players []PlayerView) (ordinal, total int) {
	sorted := Standings(players)
	for i, p := range sorted {
		if p.ID == id {
			return i + 1, len(sorted)
		}
	}
	return 0, len(sorted)
}

// Standings returns a copy of players sorted by score descending with a
// stable tie-break on input order.
func Standings(players []PlayerView) []PlayerView {
	sorted := make([]PlayerView, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}
