package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const serviceName = "air-quality-etl"

// NewLogger builds the process logger (JSON unless format is "text") and tags
// every record with the service name. The untagged base logger also becomes
// the slog default.
func NewLogger(level, format string) *slog.Logger {
	return sharedobs.NewLogger(level, format).With("service", serviceName)
}
