// Package siteconfig parses the site list input file (spec §6): UTF-8
// text, one site per line, "name,url,interval,timeout", with interval
// and timeout given as positive floating-point seconds.
package siteconfig

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
)

// ParseError identifies the 1-based line number a site file failed to
// parse at, per spec §6's "abort startup with a user-visible message
// identifying the offending line number".
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Load reads and validates the site list at path.
func Load(path string) ([]model.SiteConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not find the file at the specified path: %w", err)
	}
	defer f.Close()

	var sites []model.SiteConfig
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cfg, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Reason: err.Error()}
		}
		if seen[cfg.Name] {
			return nil, &ParseError{Line: lineNo, Reason: "duplicate site name " + strconv.Quote(cfg.Name)}
		}
		seen[cfg.Name] = true
		sites = append(sites, cfg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return sites, nil
}

func parseLine(line string) (model.SiteConfig, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 4 {
		return model.SiteConfig{}, fmt.Errorf("expected 4 fields \"name, url, interval, timeout\", got %d", len(fields))
	}

	name := strings.TrimSpace(fields[0])
	url := strings.TrimSpace(fields[1])
	intervalStr := strings.TrimSpace(fields[2])
	timeoutStr := strings.TrimSpace(fields[3])

	if name == "" {
		return model.SiteConfig{}, fmt.Errorf("site name must not be empty")
	}
	if url == "" {
		return model.SiteConfig{}, fmt.Errorf("url must not be empty")
	}

	interval, err := strconv.ParseFloat(intervalStr, 64)
	if err != nil || interval <= 0 {
		return model.SiteConfig{}, fmt.Errorf("interval must be a positive number, got %q", intervalStr)
	}
	timeout, err := strconv.ParseFloat(timeoutStr, 64)
	if err != nil || timeout <= 0 {
		return model.SiteConfig{}, fmt.Errorf("timeout must be a positive number, got %q", timeoutStr)
	}

	return model.SiteConfig{
		Name:     name,
		URL:      url,
		Interval: time.Duration(interval * float64(time.Second)),
		Timeout:  time.Duration(timeout * float64(time.Second)),
	}, nil
}

// IntervalSuffix returns cfg.Interval in seconds with the decimal
// point stripped, for the "<name>_<interval-without-dot>.txt" log file
// naming convention in spec §6 (e.g. 0.5s -> "05", 10s -> "10").
func IntervalSuffix(cfg model.SiteConfig) string {
	secs := cfg.Interval.Seconds()
	s := strconv.FormatFloat(secs, 'f', -1, 64)
	return strings.ReplaceAll(s, ".", "")
}
