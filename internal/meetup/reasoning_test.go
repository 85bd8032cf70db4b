package meetup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randytsao24/meetmta/internal/models"
)

func TestReasoning(t *testing.T) {
	hub := models.Station{Name: "Union Square-14th Street", Borough: "Manhattan", Lines: []string{"L"}}
	plain := models.Station{Name: "Bedford Avenue", Borough: "Brooklyn", Lines: []string{"L"}}

	tests := []struct {
		name    string
		station models.Station
		r1, r2  RouteEstimate
		want    string
	}{
		{
			name:    "everything holds",
			station: hub,
			r1:      RouteEstimate{TravelMinutes: 10},
			r2:      RouteEstimate{TravelMinutes: 12},
			want: "Selected for balanced travel times for both people, direct routes with no transfers required, " +
				"major transit hub with excellent connectivity, central Manhattan location, short travel times.",
		},
		{
			name:    "one transfer",
			station: plain,
			r1:      RouteEstimate{TravelMinutes: 30, Transfers: 1},
			r2:      RouteEstimate{TravelMinutes: 33},
			want:    "Selected for balanced travel times for both people, minimal transfers required.",
		},
		{
			name:    "nothing stands out",
			station: plain,
			r1:      RouteEstimate{TravelMinutes: 40, Transfers: 1},
			r2:      RouteEstimate{TravelMinutes: 20, Transfers: 1},
			want:    "Selected for optimal balance of travel time and convenience.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reasoning(tt.station, tt.r1, tt.r2))
		})
	}
}

func TestIsTransitHub(t *testing.T) {
	assert.True(t, isTransitHub(models.Station{Name: "Fulton Street", Lines: []string{"A"}}))
	assert.True(t, isTransitHub(models.Station{Name: "Jay Street-MetroTech", Lines: []string{"F"}}))
	assert.True(t, isTransitHub(models.Station{Name: "Somewhere", Lines: []string{"A", "C", "E", "L"}}))
	assert.False(t, isTransitHub(models.Station{Name: "Bedford Avenue", Lines: []string{"L"}}))
}

func TestScoreMeetingTransferPenalty(t *testing.T) {
	st := models.Station{Name: "Bedford Avenue", Lines: []string{"L"}}
	r1 := RouteEstimate{TravelMinutes: 20, Transfers: 1}
	r2 := RouteEstimate{TravelMinutes: 20, Transfers: 1}

	// 100 balance + 60 efficiency + 3 connectivity
	assert.InDelta(t, 163-20, scoreMeeting(st, r1, r2, false), 1e-9)
	assert.InDelta(t, 163-40, scoreMeeting(st, r1, r2, true), 1e-9)
}
