package rxnav

import (
	"strings"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// SeverityMapper translates the upstream free-text severity vocabulary into
// the local severity scale. It is a seam: callers may substitute their own
// mapping without touching the client.
type SeverityMapper func(upstream string) entities.Severity

// DefaultSeverityMapper is the substring mapping used in production. The
// table intentionally shifts upstream tiers up by one ("moderate" text maps
// to local "high"); downstream consumers depend on the existing tiers, so do
// not "fix" it.
func DefaultSeverityMapper(upstream string) entities.Severity {
	if upstream == "" {
		return entities.SeverityUnknown
	}

	severity := strings.ToLower(upstream)

	switch {
	case strings.Contains(severity, "contraindicated") || strings.Contains(severity, "major"):
		return entities.SeverityCritical
	case strings.Contains(severity, "moderate"):
		return entities.SeverityHigh
	case strings.Contains(severity, "minor"):
		return entities.SeverityModerate
	default:
		return entities.SeverityLow
	}
}
