package api

// Phase identifies which operation produced an error.
type Phase int

const (
	PhaseUpload Phase = iota
	PhaseSearch
)

func (p Phase) String() string {
	if p == PhaseSearch {
		return "search"
	}
	return "upload"
}

// Cause classifies where a call failed. The distinction is internal;
// the view shows one undifferentiated message either way.
type Cause int

const (
	// CauseTransport covers network failures, non-2xx responses, and
	// timeout-triggered aborts.
	CauseTransport Cause = iota
	// CauseDeclared covers 2xx responses whose envelope reports
	// success:false.
	CauseDeclared
)

// Error is a failed ingest or search call.
type Error struct {
	Message string
	Phase   Phase
	Cause   Cause
}

func (e *Error) Error() string { return e.Message }
