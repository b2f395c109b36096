package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pathshare/tracker/internal/geo"
	"github.com/pathshare/tracker/internal/track"
)

func TestSubmitFixSendsPayload(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, time.Second, newTestLogger())
	err := c.SubmitFix(context.Background(), geo.Coordinate{Lat: -13.52, Lon: -71.95}, "dev1")
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/api/positions" {
		t.Errorf("path = %s", gotPath)
	}
	if gotBody["latitude"] != -13.52 || gotBody["longitude"] != -71.95 || gotBody["device_id"] != "dev1" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestSubmitRouteSendsEmptyArrayNotNull(t *testing.T) {
	var gotBody struct {
		Coordinates []interface{} `json:"coordinates"`
	}
	var rawBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawBody, _ = io.ReadAll(r.Body)
		json.Unmarshal(rawBody, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, time.Second, newTestLogger())
	if err := c.SubmitRoute(context.Background(), track.Route{}); err != nil {
		t.Fatal(err)
	}

	if gotBody.Coordinates == nil {
		t.Errorf("empty route must serialize as [], got body %s", rawBody)
	}
}

func TestSubmitFixSurfacesServerRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"device id must not be empty"}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, time.Second, newTestLogger())
	err := c.SubmitFix(context.Background(), geo.Coordinate{}, "")
	if err == nil {
		t.Fatal("expected an error for a 400 response")
	}
}
