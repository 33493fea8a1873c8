package density

import (
	"sort"

	"github.com/dingerzone/seatfinder/internal/domain/model"
)

// Candidate is a ranked point with its density.
type Candidate struct {
	Point   model.FieldPoint
	Density float64
	Rank    int
}

// Ranking orders points by descending density. Equal densities keep input order.
type Ranking struct {
	entries []Candidate
}

// Rank builds a Ranking from index-aligned points and densities. Extra
// entries on either side are ignored.
func Rank(points []model.FieldPoint, densities []float64) Ranking {
	n := min(len(points), len(densities))
	entries := make([]Candidate, n)
	for i := 0; i < n; i++ {
		entries[i] = Candidate{Point: points[i], Density: densities[i]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Density > entries[j].Density
	})
	for i := range entries {
		entries[i].Rank = i
	}
	return Ranking{entries: entries}
}

// Len returns the number of ranked points.
func (r Ranking) Len() int { return len(r.entries) }

// Top returns at most n leading candidates. The slice must not be modified.
func (r Ranking) Top(n int) []Candidate {
	if n < 0 {
		n = 0
	}
	if n > len(r.entries) {
		n = len(r.entries)
	}
	return r.entries[:n:n]
}

// Densest returns the rank-0 candidate, or false for an empty ranking.
func (r Ranking) Densest() (Candidate, bool) {
	if len(r.entries) == 0 {
		return Candidate{}, false
	}
	return r.entries[0], true
}
