// Package chart computes the dashboard metrics and distributions from an
// already filtered set of books.
package chart

import (
	"sort"

	"github.com/listenupapp/shelfboard/internal/domain"
)

// UnknownCategory labels books whose category is missing or unresolved.
const UnknownCategory = "unknown"

// Summary holds the headline metrics.
type Summary struct {
	Total    int `json:"total"`
	Rentable int `json:"rentable"`
}

// Summarize counts all books and the rentable ones.
func Summarize(books []domain.Book) Summary {
	s := Summary{Total: len(books)}
	for _, b := range books {
		if b.CanRent {
			s.Rentable++
		}
	}
	return s
}

// CategoryCount is one segment of the category bar. Unknown marks the
// segment for books without a resolvable category.
type CategoryCount struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Share   float64 `json:"share"`
	Unknown bool    `json:"unknown,omitempty"`
}

// CategoryDistribution groups books by category name.
//
// Books with no category, or one that does not resolve, are counted in a
// separate UnknownCategory segment, which stays apart from a real category
// that happens to share its name. Segments are ordered by count descending
// then name, with the unknown segment always last. Counts sum to len(books).
func CategoryDistribution(books []domain.Book, categories []domain.Category) []CategoryCount {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	counts := make(map[string]int)
	unknown := 0
	for _, b := range books {
		if b.CategoryID != nil {
			if n, ok := names[*b.CategoryID]; ok {
				counts[n]++
				continue
			}
		}
		unknown++
	}

	share := func(n int) float64 {
		if len(books) == 0 {
			return 0
		}
		return float64(n) / float64(len(books))
	}

	out := make([]CategoryCount, 0, len(counts)+1)
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n, Share: share(n)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})

	if unknown > 0 {
		out = append(out, CategoryCount{Name: UnknownCategory, Count: unknown, Share: share(unknown), Unknown: true})
	}
	return out
}

// ZoneCount is one bar of the zone chart.
type ZoneCount struct {
	Zone    string `json:"zone"`
	Count   int    `json:"count"`
	Special bool   `json:"special"`
}

// DefaultSpecialZones are shelf areas rendered after the regular ones.
var DefaultSpecialZones = []string{"BA", "CT", "OD"}

// ZonePolicy decides which zones sort after the regular ones.
type ZonePolicy struct {
	special map[string]struct{}
}

// NewZonePolicy builds a policy from the special zone names.
// An empty list falls back to DefaultSpecialZones.
func NewZonePolicy(special []string) ZonePolicy {
	if len(special) == 0 {
		special = DefaultSpecialZones
	}
	p := ZonePolicy{special: make(map[string]struct{}, len(special))}
	for _, z := range special {
		p.special[z] = struct{}{}
	}
	return p
}

// DefaultZonePolicy uses DefaultSpecialZones.
func DefaultZonePolicy() ZonePolicy {
	return NewZonePolicy(nil)
}

// IsSpecial reports whether zone sorts after the regular zones.
func (p ZonePolicy) IsSpecial(zone string) bool {
	_, ok := p.special[zone]
	return ok
}

// SpecialZones returns the configured special zones in ascending order.
func (p ZonePolicy) SpecialZones() []string {
	out := make([]string, 0, len(p.special))
	for z := range p.special {
		out = append(out, z)
	}
	sort.Strings(out)
	return out
}

// ZoneDistribution counts books per zone. Regular zones come first in
// ascending order, then special zones in ascending order. Only zones that
// occur in books appear.
func ZoneDistribution(books []domain.Book, policy ZonePolicy) []ZoneCount {
	counts := make(map[string]int)
	for _, b := range books {
		counts[b.Zone()]++
	}

	out := make([]ZoneCount, 0, len(counts))
	for zone, n := range counts {
		out = append(out, ZoneCount{Zone: zone, Count: n, Special: policy.IsSpecial(zone)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Special != out[j].Special {
			return !out[i].Special
		}
		return out[i].Zone < out[j].Zone
	})
	return out
}

// ZoneOrder returns just the zone labels in chart order.
func ZoneOrder(counts []ZoneCount) []string {
	out := make([]string, 0, len(counts))
	for _, c := range counts {
		out = append(out, c.Zone)
	}
	return out
}
