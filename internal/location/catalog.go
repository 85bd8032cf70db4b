// Package location holds the static subway station catalog and distance math
package location

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/randytsao24/meetmta/internal/models"
)

// ErrStationNotFound is returned when a station id is not in the catalog
var ErrStationNotFound = errors.New("station not found")

//go:embed data/stations.json
var stationsJSON []byte

type stationRecord struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Borough string   `json:"borough"`
	Lines   []string `json:"lines"`
	StopIDs []string `json:"stop_ids"`
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
}

// Catalog is the read-only set of subway stations. It is safe for concurrent use
// because nothing mutates it after loading.
type Catalog struct {
	stations []models.Station
	byID     map[string]int
}

// NewCatalog loads the embedded station data
func NewCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(stationsJSON))
}

// LoadCatalog reads station records from a JSON array
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var records []stationRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing station JSON: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("station data has no records")
	}

	c := &Catalog{
		stations: make([]models.Station, 0, len(records)),
		byID:     make(map[string]int, len(records)),
	}
	for _, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("station %q has no id", rec.Name)
		}
		if _, dup := c.byID[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate station id %q", rec.ID)
		}
		for _, stop := range rec.StopIDs {
			if stop == "" {
				return nil, fmt.Errorf("station %q has an empty stop id", rec.ID)
			}
		}
		c.byID[rec.ID] = len(c.stations)
		c.stations = append(c.stations, models.Station{
			ID:      rec.ID,
			Name:    rec.Name,
			Borough: rec.Borough,
			Lines:   rec.Lines,
			StopIDs: rec.StopIDs,
			Lat:     rec.Lat,
			Lng:     rec.Lon,
		})
	}
	return c, nil
}

// All returns every station in catalog order
func (c *Catalog) All() []models.Station {
	out := make([]models.Station, len(c.stations))
	copy(out, c.stations)
	return out
}

// Get returns a station by its ID
func (c *Catalog) Get(id string) (models.Station, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Station{}, fmt.Errorf("%w: %s", ErrStationNotFound, id)
	}
	return c.stations[i], nil
}

// Count returns the number of loaded stations
func (c *Catalog) Count() int {
	return len(c.stations)
}

// ByBorough returns all stations in a borough (case-insensitive)
func (c *Catalog) ByBorough(borough string) []models.Station {
	var result []models.Station
	for _, s := range c.stations {
		if strings.EqualFold(s.Borough, borough) {
			result = append(result, s)
		}
	}
	return result
}

// ByLine returns all stations served by a line
func (c *Catalog) ByLine(line string) []models.Station {
	var result []models.Station
	for _, s := range c.stations {
		if s.ServesLine(line) {
			result = append(result, s)
		}
	}
	return result
}

// Search returns stations whose name contains query, case-insensitively
func (c *Catalog) Search(query string) []models.Station {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}
	var result []models.Station
	for _, s := range c.stations {
		if strings.Contains(strings.ToLower(s.Name), q) {
			result = append(result, s)
		}
	}
	return result
}

// Boroughs returns the sorted list of boroughs in the catalog
func (c *Catalog) Boroughs() []string {
	seen := make(map[string]bool)
	var boroughs []string
	for _, s := range c.stations {
		if !seen[s.Borough] {
			seen[s.Borough] = true
			boroughs = append(boroughs, s.Borough)
		}
	}
	sort.Strings(boroughs)
	return boroughs
}
