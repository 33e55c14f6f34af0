package dto

// Envelope wraps every JSON response. Status mirrors the HTTP status code.
type Envelope struct {
	Status   int    `json:"status"`
	Data     any    `json:"data,omitempty"`
	ErrorMsg string `json:"error_msg"`
}
