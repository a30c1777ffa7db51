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
	airportNamePattern = regexp.MustCompile(`^.{3,20}$`)
	coordinatePattern  = regexp.MustCompile(`^-?\d+(\.\d{1,13})?$`)
)

// AirportParser reads the airport reference data CSV into a lookup table
// keyed by IATA code. The same skip-and-log policy as PassengerParser
// applies to invalid rows.
type AirportParser struct {
	filePath string
	logger   *logger.Logger
}

// NewAirportParser creates a parser for the given CSV file.
func NewAirportParser(filePath string, lg *logger.Logger) *AirportParser {
	if lg == nil {
		lg = logger.New("INFO")
	}
	return &AirportParser{filePath: filePath, logger: lg}
}

// Parse reads and validates every row, returning airports keyed by code.
// A code appearing twice keeps the last valid row.
func (p *AirportParser) Parse() (map[string]types.Airport, error) {
	f, err := os.Open(p.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open airport data file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read airport data file: %w", err)
	}

	airports := make(map[string]types.Airport)
	for i, row := range rows {
		line := i + 1
		if len(row) != 4 {
			p.logger.Warn("line %d has wrong number of fields: %d", line, len(row))
			continue
		}

		name, code, latitude, longitude := row[0], row[1], row[2], row[3]

		if !airportNamePattern.MatchString(name) {
			p.logger.Warn("line %d: invalid airport name: %s", line, name)
			continue
		}
		if !airportCodePattern.MatchString(code) {
			p.logger.Warn("line %d: invalid airport code: %s", line, code)
			continue
		}
		if !coordinatePattern.MatchString(latitude) || !coordinatePattern.MatchString(longitude) {
			p.logger.Warn("line %d: invalid coordinates: %s,%s", line, latitude, longitude)
			continue
		}

		lat, err := strconv.ParseFloat(latitude, 64)
		if err != nil {
			p.logger.Warn("line %d: invalid latitude value: %s", line, latitude)
			continue
		}
		if lat < -90 || lat > 90 {
			p.logger.Warn("line %d: latitude out of range: %s", line, latitude)
			continue
		}
		lon, err := strconv.ParseFloat(longitude, 64)
		if err != nil {
			p.logger.Warn("line %d: invalid longitude value: %s", line, longitude)
			continue
		}

		airports[code] = types.Airport{
			Name:      name,
			Code:      code,
			Latitude:  lat,
			Longitude: lon,
		}
	}

	p.logger.Info("parsed %d airports from %s", len(airports), p.filePath)
	return airports, nil
}
