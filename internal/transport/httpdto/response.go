package httpdto

type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`

	// Set only for VALIDATION_FAILED.
	Field          string `json:"field,omitempty"`
	MissingIndices []int  `json:"missing_indices,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    code,
	}
}

func NewValidationErrorResponse(message, field string, missing []int) Response[any] {
	return Response[any]{
		Success:        false,
		Error:          message,
		Code:           "VALIDATION_FAILED",
		Field:          field,
		MissingIndices: missing,
	}
}
