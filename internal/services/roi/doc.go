/*
Package roi accrues daily interest on completed deposits.

A sweep runs once per business day (Monday to Friday in the configured time
zone). It reads the first active daily_investment rate and, for every completed
deposit without an entry for that date, records amount * rate / 100. Entries
are unique per (deposit, date), so re-running a sweep for the same day writes
nothing new.

Usage:

	engine := roi.NewEngine(ledger, rates, locker, roi.Config{Location: loc}, metrics, logger)

	// scheduler entrypoint
	result, err := engine.RunDaily(ctx)

	// admin backfill for a past business day with no entries yet
	result, err = engine.Generate(ctx, date)

Per-deposit failures are logged and counted in the SweepResult; they never
stop the sweep.
*/
package roi
