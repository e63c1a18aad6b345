package tracing

// Span names.
const (
	SpanStopTimer   = "store.stop_timer"
	SpanCreateEntry = "entryapi.create_entry"
)

// Span attribute keys.
const (
	AttrTimerID        = "timer.id"
	AttrEntryText      = "entry.text"
	AttrOutcome        = "outcome"
	AttrHTTPURL        = "http.url"
	AttrHTTPStatusCode = "http.status_code"
)

// Outcome values recorded on stop spans.
const (
	OutcomeSubmitted = "submitted"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)
