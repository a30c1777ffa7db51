package jobs

import (
	"github.com/CalsRain408/determine-numbers-of-flights/internal/mapreduce"
	"github.com/CalsRain408/determine-numbers-of-flights/internal/types"
)

// FlightCountMapper emits one count per flight taken, keyed by passenger ID.
type FlightCountMapper struct{}

// Map implements the Mapper contract for the frequent-flyer job. The input
// key is the record's position in the file and is not used.
func (FlightCountMapper) Map(_ int, record types.PassengerRecord) ([]mapreduce.Pair[string, int], error) {
	return []mapreduce.Pair[string, int]{
		{Key: record.PassengerID, Value: 1},
	}, nil
}

// AirportDepartureMapper emits one count per flight, keyed by the departure
// airport code.
type AirportDepartureMapper struct{}

// Map implements the Mapper contract for the airport-usage job.
func (AirportDepartureMapper) Map(_ int, record types.PassengerRecord) ([]mapreduce.Pair[string, int], error) {
	return []mapreduce.Pair[string, int]{
		{Key: record.FromAirport, Value: 1},
	}, nil
}

// SumReducer totals the counts collected for a key. Addition is commutative,
// so the result does not depend on the order values arrived in.
type SumReducer[K comparable] struct{}

// Reduce implements the Reducer contract shared by both counting jobs.
func (SumReducer[K]) Reduce(key K, values []int) ([]mapreduce.Pair[K, int], error) {
	total := 0
	for _, v := range values {
		total += v
	}
	return []mapreduce.Pair[K, int]{
		{Key: key, Value: total},
	}, nil
}
