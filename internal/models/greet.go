package models

// GreetRequest is the payload for the greet endpoint. Name is a pointer
// so a missing field can be told apart from a present-but-blank one.
type GreetRequest struct {
	Name *string `json:"name" validate:"required"`
}
