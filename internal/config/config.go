// Package config loads the line-oriented configuration file described in
// spec.md §6, grounded directly in original_source/src/config/server_config.rs's
// field set and parsing rules. This is the one component SPEC_FULL.md §9.3
// deliberately keeps on the standard library: the format is a handful of
// "name value" lines, and bufio.Scanner already is idiomatic Go for exactly
// that — reaching for a third-party config/ini library here would add a
// dependency with no corresponding gain in correctness or readability.
package config

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// Config holds the five recognized settings, each defaulted per spec.md §6.
type Config struct {
	Verbose    uint8
	Port       uint16
	Timeout    uint32 // seconds; 0 disables the idle timeout
	DBFilename string
	LogFile    string
}

// Default returns the configuration a server runs with when invoked
// without a config file argument.
func Default() *Config {
	return &Config{
		Verbose:    0,
		Port:       6379,
		Timeout:    0,
		DBFilename: "dump.rdb",
		LogFile:    "log.log",
	}
}

// LoadFile reads and parses path, starting from Default() and overwriting
// only the keys the file sets and parses successfully.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a config stream per spec.md §6: blank lines and lines
// beginning with '#' or ';' are ignored; each significant line is
// "name value" (whitespace-separated), an optional '=' between name and
// value is tolerated, and a trailing '#' or ';' starts a comment. Unknown
// keys and unparsable values for known keys are silently ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		applyLine(cfg, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyLine(cfg *Config, line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
		return
	}

	fields := strings.Fields(line)
	name := fields[0]
	rest := fields[1:]
	if i := strings.IndexByte(name, '='); i >= 0 {
		rest = append([]string{name[i+1:]}, rest...)
		name = name[:i]
	}
	if len(rest) == 0 {
		return
	}
	name = strings.ToLower(name)
	if rest[0] == "=" {
		rest = rest[1:]
	} else {
		rest[0] = strings.TrimPrefix(rest[0], "=")
	}
	value := stripComment(strings.Join(rest, " "))
	if value == "" {
		return
	}

	switch name {
	case "verbose":
		if n, err := strconv.ParseUint(value, 10, 8); err == nil {
			cfg.Verbose = uint8(n)
		}
	case "port":
		if n, err := strconv.ParseUint(value, 10, 16); err == nil {
			cfg.Port = uint16(n)
		}
	case "timeout":
		if n, err := strconv.ParseUint(value, 10, 32); err == nil {
			cfg.Timeout = uint32(n)
		}
	case "dbfilename":
		cfg.DBFilename = value
	case "logfile":
		cfg.LogFile = value
	}
}

// stripComment truncates value at the first '#' or ';' that starts a
// trailing comment, then trims surrounding whitespace.
func stripComment(value string) string {
	if i := strings.IndexAny(value, "#;"); i >= 0 {
		value = value[:i]
	}
	return strings.TrimSpace(value)
}
