package dto

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`   // stable error kind
	Message string `json:"message"` // human-readable detail
}
