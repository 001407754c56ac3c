package dto

import "time"

// ErrorResponse is the JSON body of every failed API request.
type ErrorResponse struct {
	Message      string    `json:"message" example:"active flip not found"`
	ErrorDetails string    `json:"error_details,omitempty" example:"id 7"`
	Timestamp    time.Time `json:"timestamp" example:"2025-01-02T15:04:05Z"`
}

// Error implements the error interface.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse stamped with the current time.
// A nil err leaves ErrorDetails empty.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
