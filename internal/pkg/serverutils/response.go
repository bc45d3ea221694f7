package serverutils

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type BaseResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

func ErrorResponse(code int, message string) BaseResponse {
	return BaseResponse{Status: StatusError, Code: code, Message: message}
}
