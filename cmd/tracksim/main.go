package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pathshare/tracker/internal/client"
	"github.com/pathshare/tracker/internal/geo"
	"github.com/pathshare/tracker/internal/geocode"
	"github.com/pathshare/tracker/internal/routing"
	"github.com/sirupsen/logrus"
)

// tracksim drives a simulated device: it resolves a destination, plans a
// route, publishes it, then walks the polyline feeding every point through
// the fix filter towards the tracking server.
func main() {
	var (
		serverURL  = flag.String("server", "http://localhost:8080", "tracking server base URL")
		osrmURL    = flag.String("osrm", "http://localhost:5000", "OSRM base URL")
		geocodeURL = flag.String("geocode", "https://nominatim.openstreetmap.org", "geocoding base URL")
		deviceID   = flag.String("device", "sim-1", "device identifier")
		originStr  = flag.String("origin", "", "origin as lat,lon (required)")
		destStr    = flag.String("dest", "", "destination as lat,lon or a place name (required)")
		interval   = flag.Duration("interval", 3*time.Second, "delay between position fixes")
		threshold  = flag.Float64("min-distance", 1.0, "filter threshold in meters")
		logLevel   = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{})
	logger.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if *originStr == "" || *destStr == "" {
		flag.Usage()
		log.Fatal("both -origin and -dest are required")
	}

	origin, err := parseCoord(*originStr)
	if err != nil {
		log.Fatalf("Invalid origin: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ingest := client.NewClient(*serverURL, 10*time.Second, logger)

	dest, err := resolveDestination(ctx, *destStr, origin, *geocodeURL, logger)
	if err != nil {
		log.Fatalf("Failed to resolve destination: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"origin": fmt.Sprintf("%.6f,%.6f", origin.Lat, origin.Lon),
		"dest":   fmt.Sprintf("%.6f,%.6f", dest.Lat, dest.Lon),
	}).Info("Planning route")

	// The planner publishes the route to the server and hands us the
	// polyline to walk; on lookup failure it publishes an empty route.
	osrm := routing.NewClient(*osrmURL, 10*time.Second, logger)
	planner := routing.NewPlanner(osrm, ingest, logger)
	route, ok := <-planner.Request(origin, dest)
	if !ok || len(route) == 0 {
		log.Fatal("No route available between origin and destination")
	}
	logger.WithField("points", len(route)).Info("Route published, starting drive")

	filter := client.NewFixFilter(ingest, *deviceID, *threshold, logger)
	filter.Enable()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for i, point := range route {
		select {
		case <-ctx.Done():
			logger.Info("Simulation interrupted")
			return
		case <-ticker.C:
		}

		forwarded, err := filter.Offer(ctx, point)
		if err != nil {
			logger.WithError(err).Warn("Fix transmission failed")
			continue
		}
		logger.WithFields(logrus.Fields{
			"point":     i + 1,
			"of":        len(route),
			"latitude":  point.Lat,
			"longitude": point.Lon,
			"forwarded": forwarded,
		}).Debug("Offered fix")
	}

	logger.WithField("trail", len(filter.Trail())).Info("Route complete")
}

// parseCoord parses "lat,lon" into a coordinate
func parseCoord(input string) (geo.Coordinate, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, fmt.Errorf("invalid coordinate: %s", input)
	}

	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid lat/lon: %s", input)
	}

	coord := geo.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return geo.Coordinate{}, fmt.Errorf("coordinate out of bounds: %s", input)
	}
	return coord, nil
}

// resolveDestination accepts either a lat,lon pair or a place name to
// geocode, biased around the origin.
func resolveDestination(ctx context.Context, input string, origin geo.Coordinate, geocodeURL string, logger *logrus.Logger) (geo.Coordinate, error) {
	if coord, err := parseCoord(input); err == nil {
		return coord, nil
	}

	geocoder := geocode.NewClient(geocodeURL, 5, 10*time.Second, logger)
	places, err := geocoder.Search(ctx, input, &origin)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if len(places) == 0 {
		return geo.Coordinate{}, fmt.Errorf("no match for %q", input)
	}

	logger.WithField("place", places[0].DisplayName).Info("Destination resolved")
	return places[0].Coordinate, nil
}
