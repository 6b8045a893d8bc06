package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestImportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ImportError
		expected string
	}{
		{
			name:     "simple message",
			err:      New(ErrGitHub, "pull request creation failed"),
			expected: "pull request creation failed",
		},
		{
			name: "with cause",
			err: &ImportError{
				Kind:    ErrConfig,
				Message: "config error",
				Cause:   errors.New("parse error"),
			},
			expected: "config error: parse error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestImportError_Is(t *testing.T) {
	err := Wrap(errors.New("connection refused"), ErrSFTP, "download failed")

	if !errors.Is(err, ErrSFTP) {
		t.Error("expected errors.Is(err, ErrSFTP) to be true")
	}
	if errors.Is(err, ErrGitHub) {
		t.Error("expected errors.Is(err, ErrGitHub) to be false")
	}
}

func TestImportError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(cause, ErrGit, "commit failed")

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be found via errors.Is")
	}

	// Without a cause, Unwrap falls back to the kind.
	kindOnly := New(ErrValidation, "bad record")
	if kindOnly.Unwrap() != ErrValidation {
		t.Errorf("Unwrap() = %v, want ErrValidation", kindOnly.Unwrap())
	}
}

func TestImportError_Format(t *testing.T) {
	err := WithSuggestion(ErrS3, "upload failed", "Check AWS credentials.").
		WithDetails("bucket", "it.moneymeets.net")

	got := err.Format()
	for _, want := range []string{"Error: upload failed", "bucket: it.moneymeets.net", "Check AWS credentials."} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q:\n%s", want, got)
		}
	}
}

func TestSFTPConnectFailed(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := SFTPConnectFailed("sftptrans.fondsnet.de", cause)

	if !errors.Is(err, ErrSFTP) {
		t.Error("expected ErrSFTP kind")
	}
	if err.Details["host"] != "sftptrans.fondsnet.de" {
		t.Errorf("expected host detail, got %v", err.Details)
	}
	if !strings.Contains(err.Suggestion, "QUOTAGUARDSTATIC_URL") {
		t.Error("expected suggestion to mention the egress proxy variable")
	}
}

func TestGitHubRequestFailed(t *testing.T) {
	err := GitHubRequestFailed("create pull request", errors.New("status 401"))

	if !errors.Is(err, ErrGitHub) {
		t.Error("expected ErrGitHub kind")
	}
	if !strings.Contains(err.Error(), "create pull request") {
		t.Errorf("expected operation in message, got %q", err.Error())
	}
}
