package router

import (
	"net"
	"net/http"

	"github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/httpclient"
	"github.com/netcycle/netcycle/internal/logger"
)

func shouldRetry(logger *logger.Logger, err error) bool {
	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			logger.Debugw("retrying due to HTTP error",
				"status_code", httpErr.StatusCode,
				"error", httpErr,
			)
			return true
		}
		logger.Debugw("non-retryable HTTP error",
			"status_code", httpErr.StatusCode,
			"error", httpErr,
		)
		return false
	}

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		logger.Debugw("retrying due to network timeout", "error", netErr)
		return true
	}

	// a malformed payload or an invalid phone number will not get better
	if errors.IsValidation(err) || errors.IsNotFound(err) {
		return false
	}

	return true
}
