// Package gtfsrt decodes GTFS-Realtime protocol buffer feeds into typed records.
//
// Wire parsing is done by the MobilityData bindings; this package turns the
// generated messages into plain structs with explicit optionality and reports
// failures as *DecodeError with the stage and byte offset where decoding broke.
package gtfsrt

import (
	"errors"
	"fmt"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
)

// Decode stages reported in DecodeError
const (
	StagePrecheck = "precheck"
	StageHeader   = "header"
	StageEntity   = "entity"
	StageMessage  = "message"
)

var (
	ErrEmptyPayload = errors.New("empty payload")
	ErrNotProtobuf  = errors.New("payload does not look like protobuf")
)

// FeedMessage field numbers
const (
	feedHeaderField protowire.Number = 1
	feedEntityField protowire.Number = 2
)

// DecodeError describes a malformed or truncated feed payload
type DecodeError struct {
	Stage  string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gtfsrt: decode failed at %s (offset %d): %v", e.Stage, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var unmarshalOpts = proto.UnmarshalOptions{AllowPartial: true}

// Decode parses a binary FeedMessage
func Decode(data []byte) (*FeedMessage, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Stage: StagePrecheck, Err: ErrEmptyPayload}
	}
	// A protobuf message starts with a single-byte tag for low field numbers;
	// zero is never a valid tag and a set high bit is a multi-byte varint.
	if first := data[0]; first == 0 || first > 127 {
		return nil, &DecodeError{Stage: StagePrecheck, Err: fmt.Errorf("%w: first byte 0x%02x", ErrNotProtobuf, first)}
	}

	raw := &gtfs.FeedMessage{}
	if err := unmarshalOpts.Unmarshal(data, raw); err != nil {
		stage, offset := locateFault(data)
		return nil, &DecodeError{Stage: stage, Offset: offset, Err: err}
	}

	return fromProto(raw), nil
}

// locateFault walks the top-level fields to find the one that fails to parse.
func locateFault(data []byte) (string, int) {
	offset := 0
	for offset < len(data) {
		num, typ, n := protowire.ConsumeTag(data[offset:])
		if n < 0 {
			return StageMessage, offset
		}
		m := protowire.ConsumeFieldValue(num, typ, data[offset+n:])
		if m < 0 {
			return stageFor(num), offset
		}

		if typ == protowire.BytesType {
			body, _ := protowire.ConsumeBytes(data[offset+n:])
			var err error
			switch num {
			case feedHeaderField:
				err = unmarshalOpts.Unmarshal(body, &gtfs.FeedHeader{})
			case feedEntityField:
				err = unmarshalOpts.Unmarshal(body, &gtfs.FeedEntity{})
			}
			if err != nil {
				return stageFor(num), offset
			}
		}
		offset += n + m
	}
	return StageMessage, offset
}

func stageFor(num protowire.Number) string {
	switch num {
	case feedHeaderField:
		return StageHeader
	case feedEntityField:
		return StageEntity
	}
	return StageMessage
}

func fromProto(raw *gtfs.FeedMessage) *FeedMessage {
	msg := &FeedMessage{
		Entities: make([]FeedEntity, 0, len(raw.GetEntity())),
	}
	if h := raw.GetHeader(); h != nil {
		msg.Header = FeedHeader{
			Version:        h.GetGtfsRealtimeVersion(),
			Incrementality: h.GetIncrementality(),
			Timestamp:      h.Timestamp,
		}
	}

	for _, e := range raw.GetEntity() {
		entity := FeedEntity{
			ID:        e.GetId(),
			IsDeleted: e.GetIsDeleted(),
		}
		if tu := e.GetTripUpdate(); tu != nil {
			entity.TripUpdate = tripUpdateFromProto(tu)
		}
		if v := e.GetVehicle(); v != nil {
			entity.Vehicle = vehicleFromProto(v)
		}
		if a := e.GetAlert(); a != nil {
			entity.Alert = alertFromProto(a)
		}
		msg.Entities = append(msg.Entities, entity)
	}
	return msg
}

func tripFromProto(t *gtfs.TripDescriptor) TripDescriptor {
	if t == nil {
		return TripDescriptor{}
	}
	return TripDescriptor{
		TripID:      t.GetTripId(),
		RouteID:     t.GetRouteId(),
		DirectionID: t.DirectionId,
		StartTime:   t.GetStartTime(),
		StartDate:   t.GetStartDate(),
	}
}

func tripUpdateFromProto(tu *gtfs.TripUpdate) *TripUpdate {
	out := &TripUpdate{
		Trip:            tripFromProto(tu.GetTrip()),
		StopTimeUpdates: make([]StopTimeUpdate, 0, len(tu.GetStopTimeUpdate())),
		Timestamp:       tu.Timestamp,
		Delay:           tu.Delay,
	}
	for _, stu := range tu.GetStopTimeUpdate() {
		out.StopTimeUpdates = append(out.StopTimeUpdates, StopTimeUpdate{
			StopSequence: stu.StopSequence,
			StopID:       stu.GetStopId(),
			Arrival:      eventFromProto(stu.GetArrival()),
			Departure:    eventFromProto(stu.GetDeparture()),
		})
	}
	return out
}

func eventFromProto(ev *gtfs.TripUpdate_StopTimeEvent) *StopTimeEvent {
	if ev == nil {
		return nil
	}
	return &StopTimeEvent{Time: ev.Time, Delay: ev.Delay}
}

func vehicleFromProto(v *gtfs.VehiclePosition) *VehiclePosition {
	out := &VehiclePosition{
		VehicleID:           v.GetVehicle().GetId(),
		StopID:              v.GetStopId(),
		CurrentStopSequence: v.CurrentStopSequence,
		Timestamp:           v.Timestamp,
	}
	if t := v.GetTrip(); t != nil {
		trip := tripFromProto(t)
		out.Trip = &trip
	}
	if p := v.GetPosition(); p != nil {
		out.Position = &Position{Latitude: p.GetLatitude(), Longitude: p.GetLongitude()}
	}
	return out
}

func alertFromProto(a *gtfs.Alert) *Alert {
	out := &Alert{
		Cause:           a.GetCause(),
		Effect:          a.GetEffect(),
		URL:             translatedFromProto(a.GetUrl()),
		HeaderText:      translatedFromProto(a.GetHeaderText()),
		DescriptionText: translatedFromProto(a.GetDescriptionText()),
	}
	for _, p := range a.GetActivePeriod() {
		out.ActivePeriods = append(out.ActivePeriods, TimeRange{Start: p.Start, End: p.End})
	}
	for _, ie := range a.GetInformedEntity() {
		sel := EntitySelector{
			AgencyID:  ie.GetAgencyId(),
			RouteID:   ie.GetRouteId(),
			RouteType: ie.RouteType,
			StopID:    ie.GetStopId(),
		}
		if t := ie.GetTrip(); t != nil {
			trip := tripFromProto(t)
			sel.Trip = &trip
		}
		out.InformedEntities = append(out.InformedEntities, sel)
	}
	return out
}

func translatedFromProto(ts *gtfs.TranslatedString) *TranslatedString {
	if ts == nil {
		return nil
	}
	out := &TranslatedString{Translations: make([]Translation, 0, len(ts.GetTranslation()))}
	for _, t := range ts.GetTranslation() {
		out.Translations = append(out.Translations, Translation{Text: t.GetText(), Language: t.GetLanguage()})
	}
	return out
}
