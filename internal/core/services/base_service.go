package services

import "time"

// nowFunc supplies the current instant; tests substitute a fixed clock.
type nowFunc func() time.Time

func defaultNow() time.Time {
	return time.Now().UTC()
}

// maxTxnRetries bounds how often a mutating operation re-executes its
// read-modify-write sequence after an isolation conflict before the conflict
// is surfaced to the caller.
const maxTxnRetries = 3
