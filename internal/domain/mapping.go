package domain

import "strings"

// MappingTable relates legacy station codes to canonical ones. One canonical
// station may carry several legacy aliases; each alias resolves to exactly
// one canonical code (the last metadata row naming it wins).
type MappingTable struct {
	canonical map[string]string   // legacy -> canonical
	aliases   map[string][]string // canonical -> legacy, in metadata order
}

// NewMappingTable builds the multimap from metadata rows, splitting each
// comma-joined legacy field into one alias per code.
func NewMappingTable(rows []StationMetadata) MappingTable {
	m := MappingTable{
		canonical: make(map[string]string),
		aliases:   make(map[string][]string),
	}
	for _, row := range rows {
		code := strings.TrimSpace(row.Code)
		if code == "" {
			continue
		}
		for _, legacy := range splitLegacyCodes(row.LegacyCodes) {
			m.Add(legacy, code)
		}
	}
	return m
}

// Add registers legacy as an alias of canonical.
func (m *MappingTable) Add(legacy, canonical string) {
	if m.canonical == nil {
		m.canonical = make(map[string]string)
		m.aliases = make(map[string][]string)
	}
	if prev, ok := m.canonical[legacy]; ok {
		m.aliases[prev] = removeString(m.aliases[prev], legacy)
	}
	m.canonical[legacy] = canonical
	m.aliases[canonical] = append(m.aliases[canonical], legacy)
}

// Lookup returns the canonical code for a legacy code.
func (m MappingTable) Lookup(legacy string) (string, bool) {
	c, ok := m.canonical[legacy]
	return c, ok
}

// Aliases returns the legacy codes known for a canonical code.
func (m MappingTable) Aliases(canonical string) []string {
	return append([]string(nil), m.aliases[canonical]...)
}

// Len returns the number of legacy aliases.
func (m MappingTable) Len() int { return len(m.canonical) }

// MapStationCodes rewrites every column whose code is a known legacy alias to
// its canonical code. Unknown codes pass through untouched; the common-station
// resolution decides later whether they matter. The input is not modified.
func MapStationCodes(s Series, m MappingTable) Series {
	out := s.Clone()
	for i, col := range out.Columns {
		if canonical, ok := m.Lookup(col.Code); ok {
			out.Columns[i].Code = canonical
		}
	}
	return out
}

// UnmappedCodes lists the column codes that have no legacy alias entry.
func UnmappedCodes(s Series, m MappingTable) []string {
	var out []string
	for _, col := range s.Columns {
		if _, ok := m.Lookup(col.Code); !ok {
			out = append(out, col.Code)
		}
	}
	return out
}

func splitLegacyCodes(field string) []string {
	var out []string
	for _, part := range strings.Split(field, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
