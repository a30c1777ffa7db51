package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CalsRain408/determine-numbers-of-flights/internal/mapreduce"
	"github.com/CalsRain408/determine-numbers-of-flights/internal/types"
)

// SortByCount orders count results highest first. Ties break on key so the
// ranking is stable for equal counts.
func SortByCount(results []mapreduce.Pair[string, int]) []mapreduce.Pair[string, int] {
	sorted := make([]mapreduce.Pair[string, int], len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].Key < sorted[j].Key
	})
	return sorted
}

// WriteTopFlyers renders the frequent-flyer ranking table, showing at most
// topN passengers.
func WriteTopFlyers(w io.Writer, results []mapreduce.Pair[string, int], topN int) {
	fmt.Fprintf(w, "\n=== Most Frequent Flyers Results ===\n")

	sorted := SortByCount(results)

	fmt.Fprintf(w, "Top %d Most Frequent Flyers:\n", topN)
	fmt.Fprintf(w, "%-6s %-15s %-12s\n", "Rank", "Passenger ID", "Flight Count")
	fmt.Fprintln(w, strings.Repeat("-", 36))

	for i, r := range sorted {
		if i >= topN {
			break
		}
		fmt.Fprintf(w, "%-6d %-15s %-12d\n", i+1, r.Key, r.Value)
	}

	if len(sorted) > topN {
		fmt.Fprintf(w, "\nTotal number of passengers: %d\n", len(sorted))
	}
}

// WriteAirportUsage renders departures per airport, resolving codes against
// the airport table, then lists airports no flight departed from.
func WriteAirportUsage(w io.Writer, results []mapreduce.Pair[string, int], airports map[string]types.Airport) {
	fmt.Fprintf(w, "\n=== Airport Usage Results ===\n")
	fmt.Fprintf(w, "%-6s %-22s %-12s\n", "Code", "Airport", "Departures")
	fmt.Fprintln(w, strings.Repeat("-", 42))

	used := make(map[string]bool, len(results))
	for _, r := range SortByCount(results) {
		name := "UNKNOWN"
		if a, ok := airports[r.Key]; ok {
			name = a.Name
		}
		used[r.Key] = true
		fmt.Fprintf(w, "%-6s %-22s %-12d\n", r.Key, name, r.Value)
	}

	var unused []string
	for code := range airports {
		if !used[code] {
			unused = append(unused, code)
		}
	}
	sort.Strings(unused)

	if len(unused) > 0 {
		fmt.Fprintf(w, "\nUnused airports (%d): %s\n", len(unused), strings.Join(unused, ", "))
	}
}

type jsonEntry struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// ExportJSON writes the results as an array of {key, value} objects to
// <outputDir>/<job_name_snake_case>.json, creating the directory on demand.
// It returns the path written.
func ExportJSON(jobName string, results []mapreduce.Pair[string, int], outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := strings.ToLower(strings.ReplaceAll(jobName, " ", "_")) + ".json"
	path := filepath.Join(outputDir, filename)

	entries := make([]jsonEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, jsonEntry{Key: r.Key, Value: r.Value})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write results file %s: %w", path, err)
	}

	return path, nil
}
