package httpdto

// SubscribeRequest is used for POST /v1/subscribe
type SubscribeRequest struct {
	Email string `json:"email" binding:"required"`
}
