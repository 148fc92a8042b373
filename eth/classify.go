package eth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AlexNa-Holdings/lptracker/retry"
	"github.com/ethereum/go-ethereum/rpc"
)

// JSON-RPC error codes seen from EVM nodes and hosted providers.
const (
	codeExecutionReverted = 3
	codeInvalidRequest    = -32600
	codeMethodNotFound    = -32601
	codeInvalidParams     = -32602
	codeLimitExceeded     = -32005
)

// Classify sorts go-ethereum RPC failures into retry classes.
func Classify(err error) retry.Class {
	if c := retry.Classify(err); c != retry.Unexpected {
		return c
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusTooManyRequests:
			return retry.Transient
		case httpErr.StatusCode >= 500:
			return retry.Transient
		case httpErr.StatusCode >= 400:
			return retry.Terminal
		}
	}

	if isRevert(err) {
		return retry.Terminal
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeInvalidRequest, codeMethodNotFound, codeInvalidParams:
			return retry.Terminal
		case codeLimitExceeded:
			return retry.Transient
		}
	}

	if isRateLimitError(err) || isGatewayError(err) {
		return retry.Transient
	}

	return retry.Unexpected
}

func isRevert(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeExecutionReverted {
		return true
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}

// isRateLimitError checks if an error is a 429 rate limit error
func isRateLimitError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "429") || strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "rate limit")
}

// isGatewayError checks if an error is a 502/503/504 gateway error
func isGatewayError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "502") || strings.Contains(errStr, "503") || strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "Bad Gateway") || strings.Contains(errStr, "Service Unavailable")
}
