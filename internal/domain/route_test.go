package domain

import (
	"encoding/json"
	"testing"
)

func TestRouteStationIDs(t *testing.T) {
	// build test data
	route := Route{
		Stops:      []Waypoint{Depot(), StationStop(4), StationStop(7), Depot()},
		DistanceKm: 20,
		WeightKg:   50,
		Cost:       CostBreakdown{Total: 40},
	}

	ids := route.StationIDs()
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 7 {
		t.Fatalf("StationIDs() = %v, want [4 7]", ids)
	}
	if !route.Visits(7) || route.Visits(1) {
		t.Errorf("Visits mismatch for stops %s", FormatStops(route.Stops))
	}
	if got := route.CostPerKm(); got != 2 {
		t.Errorf("CostPerKm() = %v, want 2", got)
	}
	if got := route.CostPerKg(); got != 0.8 {
		t.Errorf("CostPerKg() = %v, want 0.8", got)
	}

	empty := Route{}
	if empty.CostPerKm() != 0 || empty.CostPerKg() != 0 {
		t.Errorf("empty route ratios should be zero")
	}
}

func TestStopsRoundTrip(t *testing.T) {
	stops := []Waypoint{Depot(), StationStop(12), StationStop(3), Depot()}

	s := FormatStops(stops)
	if s != "depot,12,3,depot" {
		t.Fatalf("FormatStops() = %q", s)
	}

	parsed, err := ParseStops(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatStops(parsed) != s {
		t.Errorf("ParseStops(%q) = %s", s, FormatStops(parsed))
	}
	if !parsed[0].IsDepot() {
		t.Errorf("first stop should be the depot")
	}

	if _, err := ParseStops("depot,x,depot"); err == nil {
		t.Errorf("expected error for non-numeric stop")
	}
}

func TestWaypointJSON(t *testing.T) {
	data, err := json.Marshal([]Waypoint{Depot(), StationStop(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `["depot","5"]` {
		t.Errorf("json = %s", data)
	}
}

func TestVehicleCharges(t *testing.T) {
	own := Vehicle{ID: "v1", CapacityKg: 100, RentalCost: 200}
	rented := Vehicle{ID: "rental-1", CapacityKg: 100, RentalCost: 200, Rented: true}

	if own.RentalCharge() != 0 {
		t.Errorf("own vehicle should not be charged rental")
	}
	if rented.RentalCharge() != 200 {
		t.Errorf("RentalCharge() = %v, want 200", rented.RentalCharge())
	}
	if !own.Fits(60, 40) || own.Fits(60, 40.5) {
		t.Errorf("Fits should allow exactly full capacity and nothing more")
	}
}

func TestDemandItems(t *testing.T) {
	d := DemandRecord{StationID: 1, Count: 4, WeightKg: 100}
	if d.Items() != 4 || d.ItemWeight() != 25 {
		t.Errorf("items=%d itemWeight=%v", d.Items(), d.ItemWeight())
	}

	bulk := DemandRecord{StationID: 2, WeightKg: 30}
	if bulk.Items() != 1 || bulk.ItemWeight() != 30 {
		t.Errorf("uncounted demand should be a single item")
	}
}

func TestPlanAcceptedStations(t *testing.T) {
	plan := Plan{
		Accepted: []AcceptedDemand{{StationID: 1}, {StationID: 2}, {StationID: 3}},
		Rejected: []RejectionRecord{{StationID: 2, Reason: ReasonFleetExhausted}},
	}

	ids := plan.AcceptedStations()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("AcceptedStations() = %v, want [1 3]", ids)
	}
}

func TestParseFleetMode(t *testing.T) {
	cases := map[string]FleetMode{
		"fixed":     FixedFleet,
		"elastic":   ElasticFleet,
		"unlimited": ElasticFleet,
	}
	for in, want := range cases {
		got, err := ParseFleetMode(in)
		if err != nil || got != want {
			t.Errorf("ParseFleetMode(%q) = %q, %v", in, got, err)
		}
	}

	if _, err := ParseFleetMode("rocket"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
}
