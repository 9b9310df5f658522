package generator

import (
	"errors"
	"fmt"
)

// ValidationError 表示调用方输入不合法（例如 prompt 与 image 均为空）。
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConfigurationError 表示部署配置缺失，目前只有模型凭证一项。
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s not configured", e.Key)
}

// TransportError wraps a failed call to the model endpoint. StatusCode is zero
// when the request never produced an HTTP response.
type TransportError struct {
	Stage      Stage
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("model API error: %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("model API request failed: %v", e.Err)
	}
	return "model API request failed"
}

func (e *TransportError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// errMissingInput is returned before any network call is made.
var errMissingInput = &ValidationError{Msg: "Prompt or image is required"}
