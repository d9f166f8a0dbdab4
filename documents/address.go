package documents

import "strings"

// ParsedAddress is the broker CSV's structured view of a free-text
// ship-to block. Fields are best effort; whatever the heuristics
// cannot place stays empty.
type ParsedAddress struct {
	Name   string
	Street string
	City   string
	State  string
	Zip    string
}

// ParseAddressBlock splits a free-text address on line boundaries:
// first line is the name, the last line is "City, ST ZIP", everything
// between is the street. This is deliberately confined to the broker
// CSV boundary; malformed input degrades to partial fields instead of
// failing a render.
func ParseAddressBlock(text string) ParsedAddress {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}

	var parsed ParsedAddress
	if len(lines) == 0 {
		return parsed
	}
	parsed.Name = lines[0]
	if len(lines) == 1 {
		return parsed
	}
	if len(lines) > 2 {
		parsed.Street = strings.Join(lines[1:len(lines)-1], ", ")
	}
	parsed.City, parsed.State, parsed.Zip = parseCityLine(lines[len(lines)-1])
	return parsed
}

// parseCityLine handles "City, ST 12345" and "City, ST, 12345".
func parseCityLine(line string) (city, state, zip string) {
	segments := strings.Split(line, ",")
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}
	city = segments[0]
	if len(segments) == 1 {
		return city, "", ""
	}

	rest := strings.Fields(strings.Join(segments[1:], " "))
	if len(rest) > 0 {
		state = rest[0]
	}
	if len(rest) > 1 {
		zip = rest[len(rest)-1]
	}
	return city, state, zip
}
