package constants

// RunStatus is the canonical status for rows in the runs table and for the
// shared progress record polled by callers.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusIdle       RunStatus = "IDLE"
	RunStatusProcessing RunStatus = "PROCESSING"
	RunStatusComplete   RunStatus = "COMPLETE"
	RunStatusError      RunStatus = "ERROR"
)
