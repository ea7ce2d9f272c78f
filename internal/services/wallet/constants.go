package wallet

// Reference prefix for withdrawals
const ReferencePrefix = "WDR"

// Metric events
const (
	EventRequested = "requested"
	EventRejected  = "rejected"
	EventCompleted = "completed"
	EventFailed    = "failed"
	EventRecorded  = "recorded"
)
