package domain

// StationID identifies a cargo collection station.
type StationID int64

// Represents a fixed collection point where users drop off cargo.
// Stations are reference data: the planner only reads them.
type Station struct {
	ID       StationID
	Name     string
	Location Coordinates
}
