package remote

import (
	"fmt"

	"github.com/imroc/req/v3"
)

// APIError is a structured error returned by the project API.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// handleAPIError folds transport errors and API error payloads into a
// single wrapped error for the given operation.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	if resp.IsErrorState() {
		var apiErr APIError
		if err := jsonUnmarshal(resp.Bytes(), &apiErr); err == nil && apiErr.Code != "" {
			return fmt.Errorf("%s: %w", operation, &apiErr)
		}
		return fmt.Errorf("api error: %s %s", operation, resp.Status)
	}

	return nil
}
