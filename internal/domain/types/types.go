// Package types contains the JSON payloads shared by the HTTP layer and its clients.
package types

import "github.com/okian/mergington/internal/domain/model"

// Activities is the GET /activities response body, keyed by activity name.
type Activities map[string]model.Activity

// MessageResponse is the body of a successful signup or unregistration.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
