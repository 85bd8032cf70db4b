// Package models defines shared data types
package models

import "time"

// Station represents a subway station from the static catalog
type Station struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Borough string   `json:"borough"`
	Lines   []string `json:"lines"`
	StopIDs []string `json:"stop_ids,omitempty"` // GTFS parent stop ids, e.g. "127"
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
}

// ServesLine reports whether the station is served by line
func (s Station) ServesLine(line string) bool {
	for _, l := range s.Lines {
		if l == line {
			return true
		}
	}
	return false
}

// Direction of travel for a train
type Direction string

const (
	Uptown    Direction = "uptown"
	Downtown  Direction = "downtown"
	Eastbound Direction = "eastbound"
	Westbound Direction = "westbound"
)

// TrainStatus summarizes an arrival
type TrainStatus string

const (
	OnTime      TrainStatus = "on_time"
	Delayed     TrainStatus = "delayed"
	Approaching TrainStatus = "approaching"
)

// Source records where a projected arrival came from
type Source string

const (
	SourceLive      Source = "live"
	SourceSynthetic Source = "synthetic"
)

// Train is a projected arrival at a station. It is recomputed on every poll.
type Train struct {
	ID               string      `json:"id"`
	Line             string      `json:"line"`
	Direction        Direction   `json:"direction"`
	CurrentStation   string      `json:"current_station"`
	NextStation      string      `json:"next_station"`
	EstimatedArrival time.Time   `json:"estimated_arrival"`
	MinutesAway      int         `json:"minutes_away"`
	Cars             int         `json:"cars"`
	Status           TrainStatus `json:"status"`
	Source           Source      `json:"source"`
}

// Severity of a service alert
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySevere  Severity = "severe"
)

// ServiceAlert represents an active MTA service alert
type ServiceAlert struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	AffectedLines []string   `json:"affected_lines"`
	Severity      Severity   `json:"severity"`
	Cause         string     `json:"cause,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	URL           string     `json:"url,omitempty"`
}

// AffectsAny reports whether the alert names any of lines
func (a ServiceAlert) AffectsAny(lines []string) bool {
	for _, affected := range a.AffectedLines {
		for _, l := range lines {
			if affected == l {
				return true
			}
		}
	}
	return false
}

// StationWithDistance is a Station with distance from a reference point
type StationWithDistance struct {
	Station
	DistanceKm    float64 `json:"distance_km"`
	DistanceMiles float64 `json:"distance_miles"`
}
