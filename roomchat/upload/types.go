package upload

// FileField is the multipart form field the upload endpoint reads.
const FileField = "file"

// Response is the JSON body returned after a successful upload.
type Response struct {
	URL string `json:"url"`
}

// ErrorResponse represents an API error response. FastAPI-style servers
// report failures under "detail".
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (e ErrorResponse) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Detail
}
