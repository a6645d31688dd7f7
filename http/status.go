package http

const (
	StatusOK        = 200 // RFC 7231, 6.3.1
	StatusCreated   = 201 // RFC 7231, 6.3.2
	StatusNoContent = 204 // RFC 7231, 6.3.5

	StatusMovedPermanently = 301 // RFC 7231, 6.4.2
	StatusFound            = 302 // RFC 7231, 6.4.3
	StatusSeeOther         = 303 // RFC 7231, 6.4.4

	StatusBadRequest           = 400 // RFC 7231, 6.5.1
	StatusForbidden            = 403 // RFC 7231, 6.5.3
	StatusNotFound             = 404 // RFC 7231, 6.5.4
	StatusMethodNotAllowed     = 405 // RFC 7231, 6.5.5
	StatusRequestTimeout       = 408 // RFC 7231, 6.5.7
	StatusUnprocessableEntity  = 422 // RFC 4918, 11.2
	StatusTooManyRequests      = 429 // RFC 6585, 4
	StatusHeaderFieldsTooLarge = 431 // RFC 6585, 5

	StatusInternalServerError = 500 // RFC 7231, 6.6.1
	StatusNotImplemented      = 501 // RFC 7231, 6.6.2
	StatusServiceUnavailable  = 503 // RFC 7231, 6.6.4
)

var statusMessages = map[int]string{
	StatusOK:        "OK",
	StatusCreated:   "Created",
	StatusNoContent: "No Content",

	StatusMovedPermanently: "Moved Permanently",
	StatusFound:            "Found",
	StatusSeeOther:         "See Other",

	StatusBadRequest:           "Bad Request",
	StatusForbidden:            "Forbidden",
	StatusNotFound:             "Not Found",
	StatusMethodNotAllowed:     "Method Not Allowed",
	StatusRequestTimeout:       "Request Timeout",
	StatusUnprocessableEntity:  "Unprocessable Entity",
	StatusTooManyRequests:      "Too Many Requests",
	StatusHeaderFieldsTooLarge: "Request Header Fields Too Large",

	StatusInternalServerError: "Internal Server Error",
	StatusNotImplemented:      "Not Implemented",
	StatusServiceUnavailable:  "Service Unavailable",
}

// StatusText returns the reason phrase for code, or "Unknown Status Code".
func StatusText(code int) string {
	if msg, ok := statusMessages[code]; ok {
		return msg
	}
	return "Unknown Status Code"
}
