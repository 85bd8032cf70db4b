package location

import (
	"sort"

	"github.com/randytsao24/meetmta/internal/models"
)

// Nearby returns stations within radiusKm of a point, closest first
func (c *Catalog) Nearby(lat, lng, radiusKm float64) []models.StationWithDistance {
	var results []models.StationWithDistance
	for _, st := range c.stations {
		dist := Haversine(lat, lng, st.Lat, st.Lng)
		if dist <= radiusKm {
			results = append(results, models.StationWithDistance{
				Station:       st,
				DistanceKm:    dist,
				DistanceMiles: KmToMiles(dist),
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	return results
}

// Closest returns the limit stations nearest to a point
func (c *Catalog) Closest(lat, lng float64, limit int) []models.StationWithDistance {
	results := c.Nearby(lat, lng, maxRadiusKm)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// maxRadiusKm comfortably covers the whole system
const maxRadiusKm = 100.0
