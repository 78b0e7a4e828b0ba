package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/code-sharad/e-com-sub000/internal/customers"
)

// Server error codes that mean a hinted or sorted query cannot run yet.
const (
	codeBadValue                    = 2
	codeIndexBuildAlreadyInProgress = 85
	codeIndexNotFound               = 27
	codeIndexBuildAborted           = 276
	codeNoQueryExecutionPlans       = 291
	codeQueryExceededMemoryLimit    = 292
)

// classifyError wraps a driver error with the customer engine's taxonomy so
// callers can branch with errors.Is.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if isIndexNotReady(err) {
		return fmt.Errorf("%s: %w: %w", op, customers.ErrIndexNotReady, err)
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%s: %w: %w", op, customers.ErrSourceUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isIndexNotReady(err error) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	msg := strings.ToLower(cmdErr.Message)
	switch cmdErr.Code {
	case codeIndexNotFound, codeNoQueryExecutionPlans, codeQueryExceededMemoryLimit, codeIndexBuildAborted, codeIndexBuildAlreadyInProgress:
		return true
	case codeBadValue:
		return strings.Contains(msg, "hint")
	}
	return strings.Contains(msg, "index build") || strings.Contains(msg, "index not ready")
}
