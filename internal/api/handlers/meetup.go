package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/randytsao24/meetmta/internal/location"
	"github.com/randytsao24/meetmta/internal/meetup"
)

const maxMeetupBodyBytes = 1 << 16

type meetupRequest struct {
	StationA          string     `json:"stationA" validate:"required"`
	StationB          string     `json:"stationB" validate:"required"`
	Person1Name       string     `json:"person1Name" validate:"max=64"`
	Person2Name       string     `json:"person2Name" validate:"max=64"`
	PreferredMeetTime *time.Time `json:"preferredMeetTime"`
	MaxTravelTime     *int       `json:"maxTravelTime" validate:"omitempty,min=1,max=240"`
	AvoidTransfers    bool       `json:"avoidTransfers"`
}

type MeetupHandler struct {
	optimizer MeetupProvider
	validate  *validator.Validate
	now       func() time.Time
}

func NewMeetupHandler(optimizer MeetupProvider) *MeetupHandler {
	return &MeetupHandler{
		optimizer: optimizer,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// FindMeetingPoint picks the best station for two people to meet
func (h *MeetupHandler) FindMeetingPoint(w http.ResponseWriter, r *http.Request) {
	var req meetupRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMeetupBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Request body must be JSON: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	opts := meetup.Options{
		Person1Name:       req.Person1Name,
		Person2Name:       req.Person2Name,
		PreferredMeetTime: h.now(),
		MaxTravelTime:     meetup.DefaultMaxTravelTime,
		AvoidTransfers:    req.AvoidTransfers,
	}
	if req.PreferredMeetTime != nil {
		opts.PreferredMeetTime = *req.PreferredMeetTime
	}
	if req.MaxTravelTime != nil {
		opts.MaxTravelTime = *req.MaxTravelTime
	}

	result, err := h.optimizer.FindMeetingPoint(req.StationA, req.StationB, opts)
	switch {
	case err == nil:
	case errors.Is(err, location.ErrStationNotFound):
		writeError(w, http.StatusNotFound, "station_not_found", err.Error())
		return
	case errors.Is(err, meetup.ErrNoCandidates):
		writeError(w, http.StatusUnprocessableEntity, "no_candidates", err.Error())
		return
	case errors.Is(err, meetup.ErrNoFeasibleRoute):
		writeError(w, http.StatusUnprocessableEntity, "no_feasible_route", err.Error())
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"person1Name": req.Person1Name,
		"person2Name": req.Person2Name,
		"result":      result,
	})
}
