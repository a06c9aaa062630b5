package pipeline

// Outcome is the per-notification processing verdict.
type Outcome int

const (
	// OutcomeCreated means a thumbnail was generated and stored.
	OutcomeCreated Outcome = iota
	// OutcomeSkipped means the key was filtered out before any I/O.
	OutcomeSkipped
	// OutcomeFailed means fetch, transcode, or store failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result records what happened to one notification.
type Result struct {
	Key           string
	Outcome       Outcome
	DerivativeKey string // set when created
	Reason        string // set when skipped
	Err           error  // set when failed
}

// Summarize counts outcomes across a batch.
func Summarize(results []Result) (created, skipped, failed int) {
	for _, r := range results {
		switch r.Outcome {
		case OutcomeCreated:
			created++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}
	return created, skipped, failed
}
