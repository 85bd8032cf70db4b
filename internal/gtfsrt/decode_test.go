package gtfsrt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"

	"github.com/randytsao24/meetmta/internal/gtfsrt"
	"github.com/randytsao24/meetmta/internal/gtfsrt/feedtest"
)

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	for _, data := range [][]byte{nil, {}} {
		msg, err := gtfsrt.Decode(data)
		assert.Nil(t, msg)

		var decErr *gtfsrt.DecodeError
		require.True(t, errors.As(err, &decErr))
		assert.Equal(t, gtfsrt.StagePrecheck, decErr.Stage)
		assert.Equal(t, 0, decErr.Offset)
		assert.True(t, errors.Is(err, gtfsrt.ErrEmptyPayload))
	}
}

func TestDecodeRejectsImplausibleFirstByte(t *testing.T) {
	for _, data := range [][]byte{{0x00, 0x01}, {0xff, 0x0a}, {0x80}} {
		_, err := gtfsrt.Decode(data)

		var decErr *gtfsrt.DecodeError
		require.True(t, errors.As(err, &decErr), "%x", data)
		assert.Equal(t, gtfsrt.StagePrecheck, decErr.Stage)
		assert.True(t, errors.Is(err, gtfsrt.ErrNotProtobuf))
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	now := time.Now()
	data := feedtest.Feed{Trips: []feedtest.Trip{{
		TripID:  "trip-1",
		RouteID: "N",
		Stops:   []feedtest.Stop{{StopID: "R16N", Arrival: now.Add(5 * time.Minute)}},
	}}}.Bytes(t)

	_, err := gtfsrt.Decode(data[:len(data)-3])

	var decErr *gtfsrt.DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, gtfsrt.StageEntity, decErr.Stage)
	assert.Greater(t, decErr.Offset, 0)
	assert.Contains(t, err.Error(), "entity")
}

func TestDecodeMalformedNestedEntity(t *testing.T) {
	header, err := proto.Marshal(&gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
	})
	require.NoError(t, err)

	// entity field whose body is a tag with the reserved wire type 7
	data := protowire.AppendTag(append([]byte{}, header...), 2, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte{0x0f})

	_, err = gtfsrt.Decode(data)

	var decErr *gtfsrt.DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, gtfsrt.StageEntity, decErr.Stage)
	assert.Equal(t, len(header), decErr.Offset)
}

func TestDecodeUnknownWireType(t *testing.T) {
	_, err := gtfsrt.Decode([]byte{0x0f, 0x01})

	var decErr *gtfsrt.DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.NotEqual(t, gtfsrt.StagePrecheck, decErr.Stage)
}

func TestDecodeTripUpdates(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	data := feedtest.Feed{
		Trips: []feedtest.Trip{
			{
				TripID:      "058150_N..N",
				RouteID:     "N",
				DirectionID: feedtest.Dir(0),
				Stops: []feedtest.Stop{
					{StopID: "R16N", Arrival: now.Add(3 * time.Minute), DelaySec: feedtest.Delay(120)},
					{StopID: "R17N", Depart: now.Add(6 * time.Minute)},
				},
			},
			{TripID: "no-direction", RouteID: "Q"},
		},
		Vehicles: []feedtest.Vehicle{{TripID: "058150_N..N", StopID: "R15N"}},
	}.Bytes(t)

	msg, err := gtfsrt.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "2.0", msg.Header.Version)
	require.NotNil(t, msg.Header.Timestamp)

	updates := msg.TripUpdates()
	require.Len(t, updates, 2)

	first := updates[0]
	assert.Equal(t, "058150_N..N", first.Trip.TripID)
	assert.Equal(t, "N", first.Trip.RouteID)
	require.NotNil(t, first.Trip.DirectionID, "present zero must not read as absent")
	assert.Equal(t, uint32(0), *first.Trip.DirectionID)
	require.Len(t, first.StopTimeUpdates, 2)

	arr := first.StopTimeUpdates[0]
	at, ok := arr.Arrival.At()
	require.True(t, ok)
	assert.True(t, at.Equal(now.Add(3*time.Minute)))
	assert.Equal(t, int32(120), arr.Arrival.DelaySeconds())
	assert.Nil(t, arr.Departure)

	dep := first.StopTimeUpdates[1]
	assert.Nil(t, dep.Arrival)
	_, ok = dep.Arrival.At()
	assert.False(t, ok)
	assert.Zero(t, dep.Arrival.DelaySeconds())
	_, ok = dep.Departure.At()
	assert.True(t, ok)

	assert.Nil(t, updates[1].Trip.DirectionID)
	assert.Empty(t, updates[1].StopTimeUpdates)

	vehicles := msg.Vehicles()
	require.Len(t, vehicles, 1)
	require.NotNil(t, vehicles[0].Trip)
	assert.Equal(t, "058150_N..N", vehicles[0].Trip.TripID)
	assert.Equal(t, "R15N", vehicles[0].StopID)
}

func TestDecodeAlerts(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	data := feedtest.Feed{Alerts: []feedtest.AlertSpec{
		{
			ID:     "alert-1",
			Routes: []string{"A", "C"},
			Effect: gtfs.Alert_SIGNIFICANT_DELAYS,
			Cause:  gtfs.Alert_MAINTENANCE,
			Header: []feedtest.Text{
				{Text: "<b>Delays</b>", Language: "en-html"},
				{Text: "Delays", Language: "en"},
			},
			Description: []feedtest.Text{{Text: "Retrasos", Language: "es"}},
			Start:       start,
		},
		{ID: "alert-2"},
	}}.Bytes(t)

	msg, err := gtfsrt.Decode(data)
	require.NoError(t, err)

	alerts := msg.AlertEntities()
	require.Len(t, alerts, 2)

	a := alerts[0].Alert
	assert.Equal(t, "alert-1", alerts[0].ID)
	assert.Equal(t, gtfs.Alert_SIGNIFICANT_DELAYS, a.Effect)
	assert.Equal(t, gtfs.Alert_MAINTENANCE, a.Cause)
	require.Len(t, a.InformedEntities, 2)
	assert.Equal(t, "A", a.InformedEntities[0].RouteID)

	header, ok := a.HeaderText.Text()
	assert.True(t, ok)
	assert.Equal(t, "Delays", header)

	desc, ok := a.DescriptionText.Text()
	assert.True(t, ok)
	assert.Equal(t, "Retrasos", desc, "falls back to the first translation")

	_, ok = a.URL.Text()
	assert.False(t, ok, "absent text is undefined")

	require.Len(t, a.ActivePeriods, 1)
	require.NotNil(t, a.ActivePeriods[0].StartTime())
	assert.True(t, a.ActivePeriods[0].StartTime().Equal(start))
	assert.Nil(t, a.ActivePeriods[0].End)
	assert.Nil(t, a.ActivePeriods[0].EndTime())

	empty := alerts[1].Alert
	assert.Empty(t, empty.InformedEntities)
	assert.Nil(t, empty.HeaderText)
	assert.Equal(t, gtfs.Alert_UNKNOWN_CAUSE, empty.Cause)
}

func TestTranslatedStringPresentButEmpty(t *testing.T) {
	var absent *gtfsrt.TranslatedString
	_, ok := absent.Text()
	assert.False(t, ok)

	_, ok = (&gtfsrt.TranslatedString{}).Text()
	assert.False(t, ok)

	text, ok := (&gtfsrt.TranslatedString{Translations: []gtfsrt.Translation{{Text: ""}}}).Text()
	assert.True(t, ok)
	assert.Empty(t, text)
}

func TestTranslatedStringLanguagePreference(t *testing.T) {
	tests := []struct {
		name         string
		translations []gtfsrt.Translation
		want         string
	}{
		{"english wins", []gtfsrt.Translation{{Text: "bonjour", Language: "fr"}, {Text: "hello", Language: "en"}}, "hello"},
		{"untagged counts as english", []gtfsrt.Translation{{Text: "bonjour", Language: "fr"}, {Text: "hello"}}, "hello"},
		{"empty english falls back to first", []gtfsrt.Translation{{Text: "bonjour", Language: "fr"}, {Text: "", Language: "en"}}, "bonjour"},
		{"no english uses first", []gtfsrt.Translation{{Text: "hola", Language: "es"}, {Text: "bonjour", Language: "fr"}}, "hola"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, ok := (&gtfsrt.TranslatedString{Translations: tc.translations}).Text()
			assert.True(t, ok)
			assert.Equal(t, tc.want, text)
		})
	}
}
