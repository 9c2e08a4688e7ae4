package request

type AssistRequest struct {
	Message  string `json:"message" binding:"required"`
	Language string `json:"language"`
}
