package events

// Evento emitido quando um operador altera o status de um request.
// Kind: "withdrawal" | "deposit".
type RequestStatusChanged struct {
	Kind      string `json:"kind"`
	RequestID string `json:"request_id"`
	NewStatus string `json:"new_status"`
	ChangedBy string `json:"changed_by,omitempty"` // id do operador, quando conhecido
	TsUnixMs  int64  `json:"ts_unix_ms"`
}
