package parser

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/CalsRain408/determine-numbers-of-flights/internal/logger"
	"github.com/CalsRain408/determine-numbers-of-flights/internal/types"
)

var (
	passengerIDPattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}[A-Z]{2}[0-9]$`)
	flightIDPattern    = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}[A-Z]$`)
	airportCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// PassengerParser reads the passenger flight data CSV. Rows that fail
// validation are logged with their line number and skipped; a bad row never
// aborts the parse.
type PassengerParser struct {
	filePath string
	logger   *logger.Logger
}

// NewPassengerParser creates a parser for the given CSV file.
func NewPassengerParser(filePath string, lg *logger.Logger) *PassengerParser {
	if lg == nil {
		lg = logger.New("INFO")
	}
	return &PassengerParser{filePath: filePath, logger: lg}
}

// Parse reads and validates every row, returning the valid records in file
// order. Only an unreadable file is an error.
func (p *PassengerParser) Parse() ([]types.PassengerRecord, error) {
	f, err := os.Open(p.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open passenger data file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // row width checked per line, not fatally

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read passenger data file: %w", err)
	}

	var records []types.PassengerRecord
	for i, row := range rows {
		line := i + 1
		if len(row) != 6 {
			p.logger.Warn("line %d has wrong number of fields: %d", line, len(row))
			continue
		}

		rec, ok := p.validateRow(line, row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	p.logger.Info("parsed %d passenger records from %s", len(records), p.filePath)
	return records, nil
}

func (p *PassengerParser) validateRow(line int, row []string) (types.PassengerRecord, bool) {
	passengerID, flightID := row[0], row[1]
	fromAirport, destAirport := row[2], row[3]
	departureTime, flightTime := row[4], row[5]

	if !passengerIDPattern.MatchString(passengerID) {
		p.logger.Warn("line %d: invalid passenger ID: %s", line, passengerID)
		return types.PassengerRecord{}, false
	}
	if !flightIDPattern.MatchString(flightID) {
		p.logger.Warn("line %d: invalid flight ID: %s", line, flightID)
		return types.PassengerRecord{}, false
	}
	if !airportCodePattern.MatchString(fromAirport) {
		p.logger.Warn("line %d: invalid from airport code: %s", line, fromAirport)
		return types.PassengerRecord{}, false
	}
	if !airportCodePattern.MatchString(destAirport) {
		p.logger.Warn("line %d: invalid destination airport code: %s", line, destAirport)
		return types.PassengerRecord{}, false
	}

	departure, err := strconv.ParseInt(departureTime, 10, 64)
	if err != nil {
		p.logger.Warn("line %d: invalid departure time: %s", line, departureTime)
		return types.PassengerRecord{}, false
	}
	if departure < 0 {
		p.logger.Warn("line %d: negative departure time: %s", line, departureTime)
		return types.PassengerRecord{}, false
	}

	duration, err := strconv.Atoi(flightTime)
	if err != nil {
		p.logger.Warn("line %d: invalid flight time: %s", line, flightTime)
		return types.PassengerRecord{}, false
	}
	if duration < 1 || duration > 9999 {
		p.logger.Warn("line %d: flight time out of range: %s", line, flightTime)
		return types.PassengerRecord{}, false
	}

	return types.PassengerRecord{
		PassengerID:   passengerID,
		FlightID:      flightID,
		FromAirport:   fromAirport,
		DestAirport:   destAirport,
		DepartureTime: departure,
		FlightTime:    duration,
	}, true
}
