package ports

import (
	"context"
	"time"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
)

// MinProviderBars is the sanity floor a bar provider must satisfy before a
// sequence is handed to the engine. The engine itself only requires the
// rule set's indicator warm-up length; this floor guards against running a
// strategy over a handful of sessions by accident.
const MinProviderBars = 20

// BarProvider supplies the ordered historical bar sequence for a run.
// Implementations must return bars strictly ascending by date. Retries,
// caching and rate limiting are the provider's concern; the engine never
// performs I/O.
type BarProvider interface {
	GetBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error)
}
