// Package wire converts workflow definitions to and from the backend wire
// format: the submission payload and the ISO-8601-style SLA duration strings.
package wire

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/hdts/flowkit/pkg/models"
)

// durationPattern matches PT<h>H<m>M with either component optional, e.g.
// PT4H30M, PT24H, PT45M. A bare "PT" is rejected: absence of both components
// is expressed by omitting the field entirely.
var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:([0-5]?\d)M)?$`)

// FormatDuration renders an SLA tier as a duration string. A nil tier and a
// zero-duration tier both render as absent (""): the wire contract treats
// "no SLA configured" as a missing field, never as PT0H0M.
func FormatDuration(sla *models.SLA) string {
	if sla == nil || sla.IsZero() {
		return ""
	}

	out := "PT"

	if sla.Hours > 0 {
		out += strconv.Itoa(sla.Hours) + "H"
	}

	if sla.Minutes > 0 {
		out += strconv.Itoa(sla.Minutes) + "M"
	}

	return out
}

// ParseDuration parses a duration string back into an SLA tier. The empty
// string is absence and yields nil. An explicit PT0H0M is legal on the way
// in and parses as a set zero duration.
func ParseDuration(s string) (*models.SLA, error) {
	if s == "" {
		return nil, nil
	}

	m := durationPattern.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return nil, fmt.Errorf("invalid duration %q: expected PT<hours>H<minutes>M", s)
	}

	sla := &models.SLA{}

	if m[1] != "" {
		hours, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("invalid hours in duration %q: %w", s, err)
		}

		sla.Hours = hours
	}

	if m[2] != "" {
		minutes, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("invalid minutes in duration %q: %w", s, err)
		}

		sla.Minutes = minutes
	}

	return sla, nil
}
