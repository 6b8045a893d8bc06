package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load("nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	loadErr, ok := err.(*LoadError)
	if !ok {
		t.Fatalf("expected *LoadError, got %T", err)
	}
	if loadErr.Path != "nonexistent/config.yaml" {
		t.Errorf("expected path 'nonexistent/config.yaml', got %q", loadErr.Path)
	}
	if loadErr.Message != "config file not found" {
		t.Errorf("expected message 'config file not found', got %q", loadErr.Message)
	}
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	// Run from a directory without a .fondsnet/config.yaml.
	tmpDir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults, got error: %v", err)
	}
	if cfg.SFTP.Host != DefaultSFTPHost {
		t.Errorf("expected default host, got %q", cfg.SFTP.Host)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
sftp:
  host: test.example.com
  port: 2222
  user: tester
  connect_timeout: 10s

s3:
  region: us-east-1
  bucket: test-bucket

git:
  base_branch: main
  feature_branch: feature/test-import

github:
  repository: v-the-cmd/test-steps
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.SFTP.Host != "test.example.com" {
		t.Errorf("expected sftp.host 'test.example.com', got %q", cfg.SFTP.Host)
	}
	if cfg.SFTP.Port != 2222 {
		t.Errorf("expected sftp.port 2222, got %d", cfg.SFTP.Port)
	}
	if cfg.SFTP.ConnectTimeout != 10*time.Second {
		t.Errorf("expected connect_timeout 10s, got %v", cfg.SFTP.ConnectTimeout)
	}
	if cfg.S3.Bucket != "test-bucket" {
		t.Errorf("expected s3.bucket 'test-bucket', got %q", cfg.S3.Bucket)
	}
	if cfg.Git.BaseBranch != "main" {
		t.Errorf("expected git.base_branch 'main', got %q", cfg.Git.BaseBranch)
	}

	// Unset fields fall back to defaults.
	if cfg.SFTP.RemotePath != DefaultRemotePath {
		t.Errorf("expected default remote path, got %q", cfg.SFTP.RemotePath)
	}
	if cfg.Git.CommitMessage != DefaultCommitMessage {
		t.Errorf("expected default commit message, got %q", cfg.Git.CommitMessage)
	}
}

func TestLoad_RepositoryFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	t.Setenv("GITHUB_REPOSITORY", "v-the-cmd/test-steps")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GitHub.Repository != "v-the-cmd/test-steps" {
		t.Errorf("expected repository from env, got %q", cfg.GitHub.Repository)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	t.Setenv("FONDSNET_SFTP_HOST", "override.example.com")
	t.Setenv("FONDSNET_S3_BUCKET", "override-bucket")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SFTP.Host != "override.example.com" {
		t.Errorf("expected env override for sftp.host, got %q", cfg.SFTP.Host)
	}
	if cfg.S3.Bucket != "override-bucket" {
		t.Errorf("expected env override for s3.bucket, got %q", cfg.S3.Bucket)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
git:
  base_branch: master
  feature_branch: master
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected validation error")
	}
	loadErr, ok := err.(*LoadError)
	if !ok {
		t.Fatalf("expected *LoadError, got %T", err)
	}
	if loadErr.Message != "configuration validation failed" {
		t.Errorf("unexpected message %q", loadErr.Message)
	}
}
