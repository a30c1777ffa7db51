package types

import "time"

// PassengerRecord is one validated row of the passenger flight data file.
type PassengerRecord struct {
	PassengerID   string
	FlightID      string
	FromAirport   string
	DestAirport   string
	DepartureTime int64 // unix seconds
	FlightTime    int   // minutes
}

// Departure returns the departure time as a time.Time.
func (r PassengerRecord) Departure() time.Time {
	return time.Unix(r.DepartureTime, 0)
}

// Airport is one validated row of the airport data file.
type Airport struct {
	Name      string
	Code      string
	Latitude  float64
	Longitude float64
}
