// Package feedtest builds encoded GTFS-Realtime feeds for tests
package feedtest

import (
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Stop describes one stop-time update of a trip
type Stop struct {
	StopID   string
	Arrival  time.Time // zero means no arrival event
	Depart   time.Time // zero means no departure event
	DelaySec *int32
}

// Trip describes one trip update entity
type Trip struct {
	TripID      string
	RouteID     string
	DirectionID *uint32
	Stops       []Stop
}

// Vehicle describes one vehicle position entity
type Vehicle struct {
	TripID string
	StopID string
}

// AlertSpec describes one alert entity
type AlertSpec struct {
	ID          string
	Routes      []string
	Effect      gtfs.Alert_Effect
	Cause       gtfs.Alert_Cause
	Header      []Text
	Description []Text
	URL         []Text
	Start, End  time.Time
}

// Text is a translation entry
type Text struct {
	Text     string
	Language string
}

// Feed builds a FeedMessage from the given parts
type Feed struct {
	Trips    []Trip
	Vehicles []Vehicle
	Alerts   []AlertSpec
}

// Message returns the feed as a bindings message
func (f Feed) Message() *gtfs.FeedMessage {
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(uint64(time.Now().Unix())),
		},
	}

	for _, t := range f.Trips {
		tu := &gtfs.TripUpdate{
			Trip: &gtfs.TripDescriptor{
				TripId:      proto.String(t.TripID),
				RouteId:     proto.String(t.RouteID),
				DirectionId: t.DirectionID,
			},
		}
		for _, s := range t.Stops {
			stu := &gtfs.TripUpdate_StopTimeUpdate{StopId: proto.String(s.StopID)}
			if !s.Arrival.IsZero() {
				stu.Arrival = &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(s.Arrival.Unix()), Delay: s.DelaySec}
			}
			if !s.Depart.IsZero() {
				stu.Departure = &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(s.Depart.Unix())}
			}
			tu.StopTimeUpdate = append(tu.StopTimeUpdate, stu)
		}
		msg.Entity = append(msg.Entity, &gtfs.FeedEntity{
			Id:         proto.String("tu-" + t.TripID),
			TripUpdate: tu,
		})
	}

	for _, v := range f.Vehicles {
		msg.Entity = append(msg.Entity, &gtfs.FeedEntity{
			Id: proto.String("vp-" + v.TripID),
			Vehicle: &gtfs.VehiclePosition{
				Trip:   &gtfs.TripDescriptor{TripId: proto.String(v.TripID)},
				StopId: proto.String(v.StopID),
			},
		})
	}

	for _, a := range f.Alerts {
		alert := &gtfs.Alert{
			HeaderText:      translated(a.Header),
			DescriptionText: translated(a.Description),
			Url:             translated(a.URL),
		}
		if a.Effect != 0 {
			alert.Effect = a.Effect.Enum()
		}
		if a.Cause != 0 {
			alert.Cause = a.Cause.Enum()
		}
		if !a.Start.IsZero() || !a.End.IsZero() {
			period := &gtfs.TimeRange{}
			if !a.Start.IsZero() {
				period.Start = proto.Uint64(uint64(a.Start.Unix()))
			}
			if !a.End.IsZero() {
				period.End = proto.Uint64(uint64(a.End.Unix()))
			}
			alert.ActivePeriod = append(alert.ActivePeriod, period)
		}
		for _, r := range a.Routes {
			alert.InformedEntity = append(alert.InformedEntity, &gtfs.EntitySelector{RouteId: proto.String(r)})
		}
		msg.Entity = append(msg.Entity, &gtfs.FeedEntity{Id: proto.String(a.ID), Alert: alert})
	}

	return msg
}

// Bytes encodes the feed, failing the test on error
func (f Feed) Bytes(t testing.TB) []byte {
	t.Helper()
	data, err := proto.Marshal(f.Message())
	if err != nil {
		t.Fatalf("marshal feed: %v", err)
	}
	return data
}

func translated(texts []Text) *gtfs.TranslatedString {
	if texts == nil {
		return nil
	}
	ts := &gtfs.TranslatedString{}
	for _, tx := range texts {
		tr := &gtfs.TranslatedString_Translation{Text: proto.String(tx.Text)}
		if tx.Language != "" {
			tr.Language = proto.String(tx.Language)
		}
		ts.Translation = append(ts.Translation, tr)
	}
	return ts
}

// Dir returns a direction id pointer
func Dir(d uint32) *uint32 {
	return &d
}

// Delay returns a delay pointer
func Delay(sec int32) *int32 {
	return &sec
}
