package topics

const (
	// Requests (saques e depósitos)
	RequestStatusChanged = "request_status_changed"

	// Ledger
	BalanceMutations = "balance_mutations"

	// DLQs
	RequestStatusChangedDLQ = "request_status_changed_dlq"
)
