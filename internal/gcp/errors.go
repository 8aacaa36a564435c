package gcp

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	gcperrors "gcpath/internal/errors"
)

// convertAPIError maps a transport error onto the stable gcpath error codes.
// Callers decide per context whether permission-denied is fatal or a
// skip-and-continue condition.
func convertAPIError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.PermissionDenied:
		return gcperrors.Wrap(gcperrors.PermissionDenied, err, "permission denied")
	case codes.NotFound:
		return gcperrors.Wrap(gcperrors.NotFound, err, "resource not found")
	default:
		return gcperrors.Wrap(gcperrors.TransportError, err, "request failed")
	}
}
