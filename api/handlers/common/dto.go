package common

// ErrorResponse 统一错误返回结构
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Fail 构造错误响应
func Fail(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg}
}
