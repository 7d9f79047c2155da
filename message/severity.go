package message

import (
	"fmt"
	"strings"
)

// Severity is the priority of a log record. Values are wire indices and must
// not be renumbered.
type Severity int32

const (
	Unknown Severity = iota
	Debug
	Info
	Notice
	Warning
	Error
	Fatal
)

var severityNames = [...]string{
	Unknown: "UNKNOWN",
	Debug:   "DEBUG",
	Info:    "INFO",
	Notice:  "NOTICE",
	Warning: "WARNING",
	Error:   "ERROR",
	Fatal:   "FATAL",
}

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	return s >= Unknown && int(s) < len(severityNames)
}

func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Severity(%d)", int32(s))
	}
	return severityNames[s]
}

// ParseSeverity resolves a case-insensitive severity name.
func ParseSeverity(name string) (Severity, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARN" {
		return Warning, nil
	}
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownSeverity, name)
}
