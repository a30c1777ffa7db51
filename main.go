package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/CalsRain408/determine-numbers-of-flights/internal/jobs"
	"github.com/CalsRain408/determine-numbers-of-flights/internal/logger"
	"github.com/CalsRain408/determine-numbers-of-flights/internal/mapreduce"
	"github.com/CalsRain408/determine-numbers-of-flights/internal/parser"
	"github.com/CalsRain408/determine-numbers-of-flights/internal/report"
	"github.com/CalsRain408/determine-numbers-of-flights/internal/types"
)

func main() {
	passengerFile := flag.String("passenger-file", "", "Path to passenger data file (required)")
	airportFile := flag.String("airport-file", "", "Path to airport data file (required)")
	outputDir := flag.String("output-dir", "./results", "Directory to save results")
	mappers := flag.Int("mappers", 4, "Number of mapper workers")
	reducers := flag.Int("reducers", 2, "Number of reducer workers")
	job := flag.String("job", "frequent", "Job to run: 'frequent' or 'airports'")
	topN := flag.Int("top-n", 10, "Number of top results to display")
	logLevel := flag.String("log-level", "INFO", "Log level: DEBUG, INFO, WARN, ERROR")
	flag.Parse()

	if *passengerFile == "" || *airportFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: flight-analysis --passenger-file FILE --airport-file FILE [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	lg := logger.New(*logLevel)

	lg.Info("loading passenger data from %s", *passengerFile)
	records, err := parser.NewPassengerParser(*passengerFile, lg).Parse()
	if err != nil {
		lg.Error("failed to load passenger data: %v", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		lg.Error("no passenger records found, exiting")
		os.Exit(1)
	}

	lg.Info("loading airport data from %s", *airportFile)
	airports, err := parser.NewAirportParser(*airportFile, lg).Parse()
	if err != nil {
		lg.Warn("failed to load airport data: %v", err)
		airports = map[string]types.Airport{}
	}
	if len(airports) == 0 {
		lg.Warn("no airport records found, some jobs may not resolve airport names")
	}

	input := make([]mapreduce.Pair[int, types.PassengerRecord], len(records))
	for i, rec := range records {
		input[i] = mapreduce.Pair[int, types.PassengerRecord]{Key: i, Value: rec}
	}

	engine, err := mapreduce.New[int, types.PassengerRecord, string, int, mapreduce.Pair[string, int]](*mappers, *reducers, lg)
	if err != nil {
		lg.Error("invalid engine configuration: %v", err)
		os.Exit(1)
	}

	var jobName string
	var mapper mapreduce.Mapper[int, types.PassengerRecord, string, int]
	switch *job {
	case "frequent":
		jobName = "Most Frequent Flyers"
		mapper = jobs.FlightCountMapper{}
	case "airports":
		jobName = "Airport Usage"
		mapper = jobs.AirportDepartureMapper{}
	default:
		lg.Error("unknown job: %s", *job)
		os.Exit(1)
	}

	lg.Info("running job %q with %d mappers and %d reducers", jobName, *mappers, *reducers)
	start := time.Now()
	results, stats := engine.Run(input, mapper, jobs.SumReducer[string]{})
	lg.Info("%s job completed in %.2f seconds (%d keys, %d dropped map tasks, %d dropped reduce tasks)",
		jobName, time.Since(start).Seconds(), stats.DistinctKeys, stats.DroppedMaps, stats.DroppedReduces)

	switch *job {
	case "frequent":
		report.WriteTopFlyers(os.Stdout, results, *topN)
	case "airports":
		report.WriteAirportUsage(os.Stdout, results, airports)
	}

	path, err := report.ExportJSON(jobName, results, *outputDir)
	if err != nil {
		lg.Error("failed to export results: %v", err)
		os.Exit(1)
	}
	lg.Info("exported results to %s", path)
}
