package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// AuditResponse carries a completed audit.
type AuditResponse struct {
	AuditID        string `json:"auditId"`
	EngineUsed     string `json:"engineUsed"`
	EngineLabel    string `json:"engineLabel"`
	GeneratedAt    string `json:"generatedAt"`
	ReportText     string `json:"reportText"`
	ReportMarkdown string `json:"reportMarkdown"`
}

// ModelCandidate describes one backend the next audit may use.
type ModelCandidate struct {
	Identifier string `json:"identifier"`
	Label      string `json:"label"`
	Priority   int    `json:"priority"`
}

// ModelsResponse lists the resolved candidates in order.
type ModelsResponse struct {
	Candidates []ModelCandidate `json:"candidates"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}
