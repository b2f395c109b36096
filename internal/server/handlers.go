package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pathshare/tracker/internal/geo"
	"github.com/pathshare/tracker/internal/hub"
	"github.com/pathshare/tracker/internal/service"
	"github.com/pathshare/tracker/internal/track"
	"github.com/sirupsen/logrus"
)

// submitFixRequest is the submit-fix payload. Coordinates are pointers so a
// missing field is distinguishable from zero.
type submitFixRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	DeviceID  string   `json:"device_id" validate:"required"`
}

type routeCoordinate struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// submitRouteRequest is the submit-route payload. An empty coordinate list
// is valid and clears the route.
type submitRouteRequest struct {
	Coordinates []routeCoordinate `json:"coordinates" validate:"dive"`
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleSubmitFix(w http.ResponseWriter, r *http.Request) {
	var req submitFixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	coord := geo.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude}
	if _, err := s.tracker.SubmitFix(r.Context(), coord, req.DeviceID); err != nil {
		if errors.Is(err, service.ErrInvalidCoordinate) || errors.Is(err, service.ErrMissingDeviceID) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to record fix")
		return
	}

	s.writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

func (s *Server) handleSubmitRoute(w http.ResponseWriter, r *http.Request) {
	var req submitRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	route := make(track.Route, 0, len(req.Coordinates))
	for _, c := range req.Coordinates {
		route = append(route, geo.Coordinate{Lat: *c.Latitude, Lon: *c.Longitude})
	}

	if _, err := s.tracker.SubmitRoute(r.Context(), route); err != nil {
		if errors.Is(err, service.ErrInvalidCoordinate) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to replace route")
		return
	}

	s.writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	s.writeJSON(w, http.StatusOK, snap.Devices)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.CheckHealth(); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleObserver upgrades the connection and subscribes it to live pushes.
// The initial snapshot is delivered before any subsequent ingestion can be
// broadcast to this observer.
func (s *Server) handleObserver(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to upgrade observer connection")
		return
	}

	obs := hub.NewWSObserver(conn, 0)
	if err := s.tracker.Attach(obs); err != nil {
		s.logger.WithError(err).Warn("Failed to deliver initial snapshot")
		return
	}

	// Read pump: observers send nothing meaningful; a read error is the
	// disconnect signal.
	go func() {
		defer s.tracker.Detach(obs)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.logger.WithFields(logrus.Fields{
					"remote": conn.RemoteAddr().String(),
				}).Info("Observer disconnected")
				return
			}
		}
	}()
}
