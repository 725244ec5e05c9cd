package domain

// Summary holds the derived counts of a batch.
type Summary struct {
	Total      int `json:"total"`
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	Failures   int `json:"failures"`
}

// Ledger is the ordered, append-only record of outcomes for one batch run.
// It is owned by a single writer and is not safe for concurrent use.
type Ledger struct {
	outcomes []ProvisionOutcome
}

// NewLedger returns an empty ledger sized for n records.
func NewLedger(n int) *Ledger {
	return &Ledger{outcomes: make([]ProvisionOutcome, 0, n)}
}

// Append freezes an outcome into the ledger.
func (l *Ledger) Append(outcome ProvisionOutcome) {
	l.outcomes = append(l.outcomes, outcome)
}

// Len returns the number of recorded outcomes.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.outcomes)
}

// Outcomes returns a copy of the outcomes in processing order.
func (l *Ledger) Outcomes() []ProvisionOutcome {
	if l == nil {
		return nil
	}
	out := make([]ProvisionOutcome, len(l.outcomes))
	copy(out, l.outcomes)
	return out
}

// Summary computes created, duplicate and failure counts.
// Failures is everything that was neither created nor a known duplicate.
func (l *Ledger) Summary() Summary {
	s := Summary{Total: l.Len()}
	if l == nil {
		return s
	}
	for _, o := range l.outcomes {
		switch o.UserStatus {
		case UserStatusCreated:
			s.Created++
		case UserStatusDuplicateSkipped:
			s.Duplicates++
		}
	}
	s.Failures = s.Total - s.Created - s.Duplicates
	return s
}
