package types

// SuccessEnvelope wraps every 2xx payload under a single data key, so
// clients can always unwrap responses the same way.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body. Code matches the pkg/errors taxonomy;
// Details is only present when the code's metadata allows exposing it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError for non-2xx responses.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
