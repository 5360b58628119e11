// Package chessdto holds wire types shared by the featured server and its
// clients.
package chessdto

// Error codes returned by featured.
const (
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeEmptyBody        = "empty_body"
	CodeBodyTooLarge     = "body_too_large"
	CodeExtractFailed    = "extract_failed"
	CodeTimeout          = "timeout"
)

// APIError is the JSON body of every non-2xx response.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "featured api error"
}
