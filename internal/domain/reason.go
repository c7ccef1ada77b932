package domain

// ComposeReason builds the status reason stored on failed or rejected aggregates.
// Audit readers parse this exact format: "CODE" or "CODE: message".
func ComposeReason(code, message string) string {
	if message == "" {
		return code
	}
	return code + ": " + message
}
