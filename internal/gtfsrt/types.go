package gtfsrt

import (
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

// Optional scalar fields are pointers: nil means the field was absent on the
// wire, which is distinct from a present zero value.

// FeedMessage is a decoded GTFS-Realtime feed
type FeedMessage struct {
	Header   FeedHeader
	Entities []FeedEntity
}

// FeedHeader carries feed-level metadata
type FeedHeader struct {
	Version        string
	Incrementality gtfs.FeedHeader_Incrementality
	Timestamp      *uint64
}

// FeedEntity holds at most one of trip update, vehicle position or alert
type FeedEntity struct {
	ID         string
	IsDeleted  bool
	TripUpdate *TripUpdate
	Vehicle    *VehiclePosition
	Alert      *Alert
}

// TripDescriptor identifies a single trip
type TripDescriptor struct {
	TripID      string
	RouteID     string
	DirectionID *uint32
	StartTime   string
	StartDate   string
}

// TripUpdate is the stop-by-stop timing of one vehicle run
type TripUpdate struct {
	Trip            TripDescriptor
	StopTimeUpdates []StopTimeUpdate
	Timestamp       *uint64
	Delay           *int32
}

// StopTimeUpdate is one stop's estimate within a trip
type StopTimeUpdate struct {
	StopSequence *uint32
	StopID       string
	Arrival      *StopTimeEvent
	Departure    *StopTimeEvent
}

// StopTimeEvent is an arrival or departure estimate
type StopTimeEvent struct {
	Time  *int64 // epoch seconds
	Delay *int32 // seconds
}

// At returns the event time, if set
func (e *StopTimeEvent) At() (time.Time, bool) {
	if e == nil || e.Time == nil {
		return time.Time{}, false
	}
	return time.Unix(*e.Time, 0), true
}

// DelaySeconds returns the reported delay or zero
func (e *StopTimeEvent) DelaySeconds() int32 {
	if e == nil || e.Delay == nil {
		return 0
	}
	return *e.Delay
}

// VehiclePosition is the last reported location of a vehicle
type VehiclePosition struct {
	Trip                *TripDescriptor
	VehicleID           string
	StopID              string
	CurrentStopSequence *uint32
	Timestamp           *uint64
	Position            *Position
}

// Position is a WGS84 coordinate
type Position struct {
	Latitude  float32
	Longitude float32
}

// Alert is a service alert entity
type Alert struct {
	ActivePeriods    []TimeRange
	InformedEntities []EntitySelector
	Cause            gtfs.Alert_Cause
	Effect           gtfs.Alert_Effect
	URL              *TranslatedString
	HeaderText       *TranslatedString
	DescriptionText  *TranslatedString
}

// TimeRange is an active period. A nil bound is open-ended.
type TimeRange struct {
	Start *uint64
	End   *uint64
}

// StartTime returns the range start, if set
func (r TimeRange) StartTime() *time.Time {
	return epochPtr(r.Start)
}

// EndTime returns the range end, if set
func (r TimeRange) EndTime() *time.Time {
	return epochPtr(r.End)
}

func epochPtr(v *uint64) *time.Time {
	if v == nil || *v == 0 {
		return nil
	}
	t := time.Unix(int64(*v), 0)
	return &t
}

// EntitySelector names what an alert applies to
type EntitySelector struct {
	AgencyID  string
	RouteID   string
	RouteType *int32
	Trip      *TripDescriptor
	StopID    string
}

// TranslatedString is a list of per-language texts
type TranslatedString struct {
	Translations []Translation
}

// Translation is text in one language
type Translation struct {
	Text     string
	Language string
}

// Text picks the first English or untagged translation when it has text,
// otherwise the first translation. ok is false when the string is absent or
// has no translations.
func (ts *TranslatedString) Text() (text string, ok bool) {
	if ts == nil || len(ts.Translations) == 0 {
		return "", false
	}
	for _, t := range ts.Translations {
		if t.Language == "en" || t.Language == "" {
			if t.Text != "" {
				return t.Text, true
			}
			break
		}
	}
	return ts.Translations[0].Text, true
}

// TripUpdates returns entities carrying a trip update
func (m *FeedMessage) TripUpdates() []*TripUpdate {
	var out []*TripUpdate
	for i := range m.Entities {
		if tu := m.Entities[i].TripUpdate; tu != nil {
			out = append(out, tu)
		}
	}
	return out
}

// Vehicles returns entities carrying a vehicle position
func (m *FeedMessage) Vehicles() []*VehiclePosition {
	var out []*VehiclePosition
	for i := range m.Entities {
		if v := m.Entities[i].Vehicle; v != nil {
			out = append(out, v)
		}
	}
	return out
}

// AlertEntities returns entities carrying an alert
func (m *FeedMessage) AlertEntities() []FeedEntity {
	var out []FeedEntity
	for _, e := range m.Entities {
		if e.Alert != nil {
			out = append(out, e)
		}
	}
	return out
}
