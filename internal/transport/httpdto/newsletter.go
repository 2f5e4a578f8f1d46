package httpdto

// SendNewsletterRequest is used for POST /v1/newsletters/send
type SendNewsletterRequest struct {
	Audience   string `json:"audience" binding:"required"`
	TestEmail  string `json:"testEmail,omitempty"`
	TemplateID string `json:"templateId" binding:"required"`
	Subject    string `json:"subject" binding:"required"`
	Content    string `json:"content" binding:"required"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Lang       string `json:"lang,omitempty"`
}

// SendErrorDTO is one per-recipient failure in the send response
type SendErrorDTO struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// SendNewsletterResponse is returned after a dispatch completes
type SendNewsletterResponse struct {
	NewsletterID string         `json:"newsletterId,omitempty"`
	Count        int            `json:"count"`
	SuccessCount int            `json:"successCount"`
	FailureCount int            `json:"failureCount"`
	Errors       []SendErrorDTO `json:"errors"`
}

// NewsletterDTO represents one broadcast in listings and detail views
type NewsletterDTO struct {
	ID              string `json:"id"`
	Subject         string `json:"subject"`
	Audience        string `json:"audience"`
	TemplateID      string `json:"template_id"`
	ImageURL        string `json:"image_url,omitempty"`
	Status          string `json:"status"`
	TotalRecipients int    `json:"total_recipients"`
	SuccessCount    int    `json:"success_count"`
	FailureCount    int    `json:"failure_count"`
	CreatedAt       string `json:"created_at"`
	CompletedAt     string `json:"completed_at,omitempty"`
}

// NewsletterListResponse is returned when listing broadcasts
type NewsletterListResponse struct {
	Newsletters []NewsletterDTO `json:"newsletters"`
	Total       int64           `json:"total"`
}
