package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrInvalidLevel        = "Invalid level"
	ErrTooManyRequests     = "Too many requests, try again later"
	ErrInternalServerError = "Internal server error"

	maxJSONBody = 1 << 20
)
