package dto

// Response 全エンドポイント共通のレスポンス形式
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func OKWithMessage(data interface{}, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

func List(data interface{}, count int) Response {
	return Response{Success: true, Data: data, Count: &count}
}

func Fail(message string) Response {
	return Response{Success: false, Message: message}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
