package gcp

import (
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	gcperrors "gcpath/internal/errors"
)

func TestConvertAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want gcperrors.ErrorCode
	}{
		{"permission denied", status.Error(codes.PermissionDenied, "denied"), gcperrors.PermissionDenied},
		{"not found", status.Error(codes.NotFound, "gone"), gcperrors.NotFound},
		{"unavailable", status.Error(codes.Unavailable, "down"), gcperrors.TransportError},
		{"plain error", errors.New("boom"), gcperrors.TransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertAPIError(tt.err)
			if code := gcperrors.CodeOf(got); code != tt.want {
				t.Errorf("code: got %s, want %s", code, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("converted error should wrap the original")
			}
		})
	}

	if convertAPIError(nil) != nil {
		t.Error("nil should stay nil")
	}
}
