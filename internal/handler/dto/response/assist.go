package response

type AssistResponse struct {
	Reply string `json:"reply"`
}
