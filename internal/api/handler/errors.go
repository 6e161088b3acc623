package handler

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Code    string `json:"code" example:"EMPLOYEE_NOT_FOUND"`
	Message string `json:"message" example:"Employee not found."`
}
