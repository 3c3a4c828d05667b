package models

type ApiResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Code    int          `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
	Page    int          `json:"page,omitempty"`
	Limit   int          `json:"limit,omitempty"`
	Total   int          `json:"total,omitempty"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
	}
}

func ConflictResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
		Code:    DuplicateKeyCode,
	}
}

func ValidationResponse(verr *ValidationError) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   "invalid request payload",
		Details: verr.Fields,
	}
}

func PaginatedResponse(data interface{}, page, limit, total int) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Page:    page,
		Limit:   limit,
		Total:   total,
	}
}
