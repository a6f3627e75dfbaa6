package request

type RegisterRequest struct {
	Responses map[string]string `json:"responses"`
}
