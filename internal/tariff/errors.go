package tariff

import "errors"

var (
	// ErrInvalidTimestamp is returned when a raw timestamp cannot be parsed.
	ErrInvalidTimestamp = errors.New("tariff: invalid timestamp")
	// ErrNegativeDuration is returned when the exit time precedes the entry time.
	ErrNegativeDuration = errors.New("tariff: exit precedes entry")
	// ErrUnknownFacility is returned by rule providers for facility names they do not know.
	ErrUnknownFacility = errors.New("tariff: unknown facility")
)

// Kind classifies calculation errors for callers that branch on them.
type Kind string

const (
	KindNone             Kind = ""
	KindInvalidTimestamp Kind = "invalid_timestamp"
	KindNegativeDuration Kind = "negative_duration"
	KindUnknownFacility  Kind = "unknown_facility"
	KindInternal         Kind = "internal"
)

// KindOf maps err onto one of the known kinds. A nil error yields KindNone and
// anything unrecognised yields KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidTimestamp):
		return KindInvalidTimestamp
	case errors.Is(err, ErrNegativeDuration):
		return KindNegativeDuration
	case errors.Is(err, ErrUnknownFacility):
		return KindUnknownFacility
	default:
		return KindInternal
	}
}
