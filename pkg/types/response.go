package types

// ErrorBody is the only error shape returned to clients.
type ErrorBody struct {
	Message string `json:"message"`
}
