package rest

// ErrorResponse is the JSON body of every non-2xx API answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
