// This file contains error constructors for the remote services the pipeline
// talks to: the FONDSNET SFTP server, S3 and the GitHub API.
package errors

import (
	"fmt"
	"time"
)

// SFTPConnectFailed creates an error for a failed SFTP connection.
func SFTPConnectFailed(host string, cause error) *ImportError {
	err := &ImportError{
		Kind:    ErrSFTP,
		Message: "could not connect to SFTP server",
		Cause:   cause,
		Suggestion: `Check the SFTP connection:

  1. Verify the host is reachable (the FONDSNET server is IP-restricted;
     traffic must go through the static egress proxy)
  2. Verify QUOTAGUARDSTATIC_URL is set when running outside the allowed range
  3. Verify the private key (FONDSNET_SFTP_SSH_KEY or ~/.ssh/fondsnet-sftp)`,
	}
	if host != "" {
		err.Details = map[string]string{"host": host}
	}
	return err
}

// SFTPDownloadFailed creates an error for a failed remote file read.
func SFTPDownloadFailed(remotePath string, cause error) *ImportError {
	return Wrap(cause, ErrSFTP, "could not read remote file").
		WithDetails("remote_path", remotePath)
}

// UploadFailed creates an error for a failed S3 upload.
func UploadFailed(bucket, key string, cause error) *ImportError {
	return Wrap(cause, ErrS3, "could not upload workbook to S3").
		WithDetails("bucket", bucket).
		WithDetails("key", key)
}

// GitHubRequestFailed creates an error for a failed GitHub API call.
func GitHubRequestFailed(operation string, cause error) *ImportError {
	return &ImportError{
		Kind:       ErrGitHub,
		Message:    fmt.Sprintf("GitHub API request failed: %s", operation),
		Cause:      cause,
		Suggestion: "Verify GITHUB_TOKEN is set and has repo scope for the target repository.",
	}
}

// RateLimited creates an error for API rate limiting.
func RateLimited(retryAfter time.Duration) *ImportError {
	suggestion := "Wait before retrying."
	if retryAfter > 0 {
		suggestion = fmt.Sprintf("Wait %v before retrying.", retryAfter.Round(time.Second))
	}
	return &ImportError{
		Kind:       ErrNetwork,
		Message:    "rate limit exceeded",
		Suggestion: suggestion,
	}
}
