package httpdto

// CreateImageUploadRequest is used for POST /v1/newsletters/images
type CreateImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// CreateImageUploadResponse returns the presigned PUT target and the public
// URL callers embed as the newsletter image.
type CreateImageUploadResponse struct {
	UploadURL string            `json:"upload_url"`
	Headers   map[string]string `json:"headers"`
	PublicURL string            `json:"public_url"`
	ObjectKey string            `json:"object_key"`
}
