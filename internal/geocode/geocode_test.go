package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pathshare/tracker/internal/geo"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSearchParsesRankedResults(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`[
			{"lat":"-13.5226","display_name":"Plaza de Armas, Cusco","lon":"-71.9673"},
			{"lat":"40.4168","display_name":"Plaza Mayor, Madrid","lon":"-3.7038"}
		]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5, time.Second, newTestLogger())
	places, err := c.Search(context.Background(), "plaza", nil)
	if err != nil {
		t.Fatal(err)
	}

	if gotQuery != "plaza" {
		t.Errorf("query sent = %q", gotQuery)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
	if places[0].Coordinate.Lat != -13.5226 || places[0].Coordinate.Lon != -71.9673 {
		t.Errorf("first place coordinate = %+v", places[0].Coordinate)
	}
	if places[0].DisplayName != "Plaza de Armas, Cusco" {
		t.Errorf("first place name = %q", places[0].DisplayName)
	}
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5, time.Second, newTestLogger())
	places, err := c.Search(context.Background(), "nowhere at all", nil)
	if err != nil {
		t.Fatalf("empty result should not be an error: %v", err)
	}
	if len(places) != 0 {
		t.Errorf("expected no places, got %+v", places)
	}
}

func TestSearchAppliesViewboxBias(t *testing.T) {
	var gotViewbox string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotViewbox = r.URL.Query().Get("viewbox")
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5, time.Second, newTestLogger())
	bias := geo.Coordinate{Lat: -13.52, Lon: -71.95}
	if _, err := c.Search(context.Background(), "plaza", &bias); err != nil {
		t.Fatal(err)
	}
	if gotViewbox == "" {
		t.Error("viewbox bias not sent")
	}
}

func TestSearchSkipsMalformedEntries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"lat":"not-a-number","lon":"0","display_name":"broken"},
			{"lat":"1.5","lon":"2.5","display_name":"ok"}
		]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, 5, time.Second, newTestLogger())
	places, err := c.Search(context.Background(), "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(places) != 1 || places[0].DisplayName != "ok" {
		t.Errorf("expected only the well-formed entry, got %+v", places)
	}
}
