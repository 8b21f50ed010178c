package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/clients"
	"github.com/jsamuelsen/quote-keeper/internal/domain"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// remoteError is the error body a posts API may send. Either
// {"message":"..."} or {"error":"..."} is understood; anything else,
// including the empty {} the public list returns, yields no message.
type remoteError struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// errorMessage extracts a human-readable reason from an error body, or "".
func errorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	var re remoteError
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&re); err != nil {
		return ""
	}

	if msg := strings.TrimSpace(re.Message); msg != "" {
		return msg
	}

	var flat string
	if json.Unmarshal(re.Error, &flat) == nil {
		return strings.TrimSpace(flat)
	}

	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(re.Error, &nested) == nil {
		return strings.TrimSpace(nested.Message)
	}

	return ""
}

// MapHTTPError turns a failed exchange with the remote list into a domain
// error. A transport error wins over resp. A 2xx response maps to nil.
//
//	404             the collection path is wrong: NotFound
//	400, 422, 4xx   the remote rejected the payload: Validation
//	401, 403, 429   the remote refuses us for now: Unavailable
//	5xx, transport  the remote is down: Unavailable
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	status := resp.StatusCode
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	reason := errorMessage(resp.Body)
	if reason == "" {
		reason = defaultReason(status, operation)
	}

	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, requestPath(resp))

	case status == http.StatusTooManyRequests:
		if after := resp.Header.Get("Retry-After"); after != "" {
			reason += ", retry after " + after
		}

		return domain.NewUnavailableError(serviceName, reason)

	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(serviceName, reason)

	default:
		return domain.NewValidationError("", reason)
	}
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, "circuit breaker open during "+operation)

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("retries exhausted during %s: %v", operation, err))

	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func requestPath(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}

	return resp.Request.URL.Path
}

func defaultReason(status int, operation string) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "remote rejected the quote"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "access denied by remote"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}
