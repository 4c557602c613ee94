package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/room-control/internal/domain/policy"
)

// bandFields is the number of values on each line: low high ideal.
const bandFields = 3

var (
	// errBandsIncomplete is returned when the file has fewer than two band lines.
	errBandsIncomplete = errors.New("comfort-band file needs a temperature and a humidity line")
	// errBandFields is returned when a line does not hold exactly three numbers.
	errBandFields = errors.New("comfort-band line must hold low, high and ideal")
)

// LoadBands reads the comfort-band file. Blank lines are skipped; the first
// remaining line is temperature and the second is humidity.
func LoadBands(path string) (policy.Bands, error) {
	if path == "" {
		path = DefaultBandsFilename
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return policy.Bands{}, fmt.Errorf("open comfort bands: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	var lines [][]float64

	scanner := bufio.NewScanner(file)
	for scanner.Scan() && len(lines) < 2 {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		values, err := parseBandLine(line)
		if err != nil {
			return policy.Bands{}, fmt.Errorf("line %d: %w", len(lines)+1, err)
		}

		lines = append(lines, values)
	}

	if err := scanner.Err(); err != nil {
		return policy.Bands{}, fmt.Errorf("read comfort bands: %w", err)
	}

	if len(lines) < 2 {
		return policy.Bands{}, errBandsIncomplete
	}

	bands := policy.Bands{
		Temperature: policy.Band{
			Low:    lines[0][0],
			High:   lines[0][1],
			Ideal:  lines[0][2],
			Margin: policy.DefaultTemperatureMargin,
		},
		Humidity: policy.Band{
			Low:    lines[1][0],
			High:   lines[1][1],
			Ideal:  lines[1][2],
			Margin: policy.DefaultHumidityMargin,
		},
	}

	if err := bands.Validate(); err != nil {
		return policy.Bands{}, err
	}

	return bands, nil
}

func parseBandLine(line string) ([]float64, error) {
	fields := strings.Fields(line)
	if len(fields) != bandFields {
		return nil, fmt.Errorf("%w: got %d values", errBandFields, len(fields))
	}

	values := make([]float64, 0, bandFields)

	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", f, err)
		}

		values = append(values, v)
	}

	return values, nil
}
