package kafka

import (
	"strings"

	apperrors "github.com/kbukum/transducekit/errors"
)

var nonRetryablePatterns = []string{
	"message too large",
	"invalid topic",
	"invalid partition",
	"unknown topic",
	"authorization failed",
}

// isNonRetryable reports broker errors a retry cannot fix.
func isNonRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range nonRetryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

func sourceError(topic string, err error) error {
	appErr := apperrors.SourceFailed("kafka", err).WithDetail("topic", topic)
	if isNonRetryable(err) {
		appErr.Retryable = false
	}
	return appErr
}

func sinkError(topic string, err error) error {
	appErr := apperrors.SinkFailed("kafka", err).WithDetail("topic", topic)
	if isNonRetryable(err) {
		appErr.Retryable = false
	}
	return appErr
}
