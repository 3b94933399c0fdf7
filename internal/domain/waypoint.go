package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const depotToken = "depot"

// Waypoint is one position in a route: either the depot or a station.
// The zero value is the depot, so no station id is ever reused as a sentinel.
type Waypoint struct {
	station   StationID
	isStation bool
}

// Depot returns the depot waypoint.
func Depot() Waypoint { return Waypoint{} }

// StationStop returns the waypoint for station id.
func StationStop(id StationID) Waypoint {
	return Waypoint{station: id, isStation: true}
}

func (w Waypoint) IsDepot() bool { return !w.isStation }

// StationID returns the station the waypoint refers to, or false for the depot.
func (w Waypoint) StationID() (StationID, bool) {
	return w.station, w.isStation
}

func (w Waypoint) String() string {
	if !w.isStation {
		return depotToken
	}
	return strconv.FormatInt(int64(w.station), 10)
}

func (w Waypoint) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Waypoint) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == depotToken {
		*w = Depot()
		return nil
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse waypoint %q: %w", s, err)
	}
	*w = StationStop(StationID(id))
	return nil
}

// FormatStops renders a stop sequence as "depot,4,7,depot".
func FormatStops(stops []Waypoint) string {
	parts := make([]string, 0, len(stops))
	for _, w := range stops {
		parts = append(parts, w.String())
	}
	return strings.Join(parts, ",")
}

// ParseStops is the inverse of FormatStops.
func ParseStops(s string) ([]Waypoint, error) {
	if strings.TrimSpace(s) == "" {
		return []Waypoint{}, nil
	}

	fields := strings.Split(s, ",")
	stops := make([]Waypoint, 0, len(fields))
	for _, f := range fields {
		var w Waypoint
		if err := w.UnmarshalText([]byte(f)); err != nil {
			return nil, fmt.Errorf("parse stops: %w", err)
		}
		stops = append(stops, w)
	}
	return stops, nil
}
