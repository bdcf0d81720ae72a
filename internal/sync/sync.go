// Package sync reconciles external aggregator data against stored accounts
// and transactions. Synchronization is idempotent and resumable: conditional
// creates absorb concurrent writers, and per-record failures are counted, not
// propagated.
package sync

// Result aggregates per-record outcomes for one sync run. A record counts
// exactly once: created records under Synced, updates and race losses under
// Duplicates, absorbed failures under Errors.
type Result struct {
	Synced     int
	Duplicates int
	Errors     int
}

func (r *Result) add(other Result) {
	r.Synced += other.Synced
	r.Duplicates += other.Duplicates
	r.Errors += other.Errors
}

// Summary pairs the account and transaction results of a full run.
type Summary struct {
	Accounts     Result
	Transactions Result
}
