package entities

// Severity is the local four-tier interaction severity scale plus "unknown".
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
	SeverityUnknown  Severity = "unknown"
)

// severityRanks defines the total order used for sorting and dedup keys.
// Lower rank sorts first.
var severityRanks = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityModerate: 2,
	SeverityLow:      3,
	SeverityUnknown:  4,
}

// Rank returns the sort rank of the severity. Unrecognized values rank
// alongside "unknown".
func (s Severity) Rank() int {
	if rank, ok := severityRanks[s]; ok {
		return rank
	}
	return severityRanks[SeverityUnknown]
}

// IsActionable reports whether the severity is one of the tiers that
// clinicians are expected to act on.
func (s Severity) IsActionable() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityModerate:
		return true
	}
	return false
}

// ParseSeverity normalizes a stored severity string to the typed enum.
func ParseSeverity(value string) Severity {
	s := Severity(value)
	if _, ok := severityRanks[s]; ok {
		return s
	}
	return SeverityUnknown
}
