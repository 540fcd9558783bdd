package client

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies an API failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindRateLimited  Kind = "rate_limited"
	KindTransport    Kind = "transport"
	KindServer       Kind = "server"
)

// APIError is returned for every non-2xx response and for transport failures.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Fields     map[string]string
	RequestID  string
	RetryAfter int // seconds, from Retry-After
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, "%d %s", e.StatusCode, e.Kind)
	} else {
		b.WriteString(string(e.Kind))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	if e.Err != nil && e.Kind == KindTransport {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *APIError of kind k.
func IsKind(err error, k Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

func kindForStatus(code int) Kind {
	switch {
	case code == http.StatusBadRequest, code == http.StatusRequestEntityTooLarge, code == http.StatusUnprocessableEntity:
		return KindValidation
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindUnauthorized
	case code == http.StatusNotFound:
		return KindNotFound
	case code == http.StatusConflict, code == http.StatusPreconditionFailed:
		return KindConflict
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindServer
	}
}

// parseError converts an error envelope into an *APIError. Bodies that are
// not JSON keep the HTTP status text as the message.
func parseError(code int, header http.Header, body []byte) *APIError {
	apiErr := &APIError{
		Kind:       kindForStatus(code),
		StatusCode: code,
		Message:    http.StatusText(code),
		RequestID:  header.Get("X-Request-ID"),
	}
	if v, err := strconv.Atoi(header.Get("Retry-After")); err == nil {
		apiErr.RetryAfter = v
	}
	if !gjson.ValidBytes(body) {
		return apiErr
	}

	parsed := gjson.ParseBytes(body)
	if msg := parsed.Get("message"); msg.Exists() && msg.String() != "" {
		apiErr.Message = msg.String()
	}
	if detail := parsed.Get("error"); detail.IsObject() {
		apiErr.Fields = map[string]string{}
		detail.ForEach(func(key, value gjson.Result) bool {
			if value.IsArray() {
				first := value.Get("0")
				apiErr.Fields[key.String()] = first.String()
			} else {
				apiErr.Fields[key.String()] = value.String()
			}
			return true
		})
	} else if detail.Type == gjson.String && detail.String() != "" {
		apiErr.Fields = map[string]string{"non_field_errors": detail.String()}
	}
	return apiErr
}
