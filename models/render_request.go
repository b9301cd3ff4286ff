package models

// RenderRequest is the input of one transform call.
type RenderRequest struct {
	HTML string

	// Optional hints for the wrapping container
	Lang      string `json:"lang,omitempty"`
	ClassName string `json:"class_name,omitempty"`
}
