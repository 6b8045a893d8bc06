// Package config provides configuration data structures for fondsnet-import.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete pipeline configuration loaded from
// .fondsnet/config.yaml. Every field has a default matching the production
// FONDSNET setup, so the file is optional.
type Config struct {
	SFTP   SFTPConfig   `yaml:"sftp"   mapstructure:"sftp"`
	S3     S3Config     `yaml:"s3"     mapstructure:"s3"`
	Git    GitConfig    `yaml:"git"    mapstructure:"git"`
	GitHub GitHubConfig `yaml:"github" mapstructure:"github"`
	Paths  PathsConfig  `yaml:"paths"  mapstructure:"paths"`
}

// SFTPConfig configures the FONDSNET SFTP download.
type SFTPConfig struct {
	// Host is the SFTP server hostname.
	Host string `yaml:"host" mapstructure:"host"`
	// Port is the SSH port (default: 22).
	Port int `yaml:"port" mapstructure:"port"`
	// User is the SSH login name.
	User string `yaml:"user" mapstructure:"user"`
	// RemotePath is the path of the Konfi list on the server.
	RemotePath string `yaml:"remote_path" mapstructure:"remote_path"`
	// KeyEnv names the environment variable holding the PEM private key.
	KeyEnv string `yaml:"key_env" mapstructure:"key_env"`
	// KeyPath is the key file used when KeyEnv is unset (default: ~/.ssh/fondsnet-sftp).
	KeyPath string `yaml:"key_path" mapstructure:"key_path"`
	// ProxyEnv names the environment variable holding the SOCKS5 proxy URL.
	ProxyEnv string `yaml:"proxy_env" mapstructure:"proxy_env"`
	// ConnectTimeout bounds the SSH handshake (default: 30s).
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// Addr returns the host:port dial address.
func (c SFTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// S3Config configures the raw workbook upload.
type S3Config struct {
	// Region is the AWS region of the bucket.
	Region string `yaml:"region" mapstructure:"region"`
	// Bucket is the S3 bucket name (doubles as the public hostname).
	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	// KeyPrefix is the object key prefix for uploaded Konfi lists.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// ObjectKey returns the hash-keyed object key for a workbook upload.
func (c S3Config) ObjectKey(fileHash string) string {
	return fmt.Sprintf("%s/AB Konfi-Liste-%s.xlsx", c.KeyPrefix, fileHash)
}

// WebURL returns the public URL of an uploaded workbook.
func (c S3Config) WebURL(fileHash string) string {
	return fmt.Sprintf("https://%s/%s", c.Bucket, c.ObjectKey(fileHash))
}

// GitConfig configures the commit/push workflow.
type GitConfig struct {
	// AuthorName is the local git user.name for generated commits.
	AuthorName string `yaml:"author_name" mapstructure:"author_name"`
	// AuthorEmail is the local git user.email for generated commits.
	AuthorEmail string `yaml:"author_email" mapstructure:"author_email"`
	// BaseBranch is the branch pull requests target.
	BaseBranch string `yaml:"base_branch" mapstructure:"base_branch"`
	// FeatureBranch is the branch the import commits to.
	FeatureBranch string `yaml:"feature_branch" mapstructure:"feature_branch"`
	// CommitMessage is the message for the data-update commit.
	CommitMessage string `yaml:"commit_message" mapstructure:"commit_message"`
}

// GitHubConfig configures the pull-request workflow.
type GitHubConfig struct {
	// Repository is the target "owner/name". Defaults to $GITHUB_REPOSITORY.
	Repository string `yaml:"repository" mapstructure:"repository"`
	// TokenEnv names the environment variable holding the API token.
	TokenEnv string `yaml:"token_env" mapstructure:"token_env"`
	// TeamFile is the YAML file listing the reviewer team.
	TeamFile string `yaml:"team_file" mapstructure:"team_file"`
	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SplitRepository returns the owner and name parts of Repository.
func (c GitHubConfig) SplitRepository() (owner, name string, err error) {
	parts := strings.SplitN(c.Repository, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be in owner/name form, got %q", c.Repository)
	}
	return parts[0], parts[1], nil
}

// PathsConfig configures local file locations. All fixture paths are relative
// to the repository root so they stay portable across checkouts.
type PathsConfig struct {
	// Download is where the workbook is written by download-from-sftp.
	Download string `yaml:"download" mapstructure:"download"`
	// ContactsFixture is the generated contacts fixture file.
	ContactsFixture string `yaml:"contacts_fixture" mapstructure:"contacts_fixture"`
	// CompaniesFixture is the companies fixture maintained by the sibling import.
	CompaniesFixture string `yaml:"companies_fixture" mapstructure:"companies_fixture"`
	// DealersFixture is the dealers fixture maintained by the sibling import.
	DealersFixture string `yaml:"dealers_fixture" mapstructure:"dealers_fixture"`
}

// FixtureFiles returns all fixture files covered by the pull-request workflow.
func (c PathsConfig) FixtureFiles() []string {
	return []string{c.CompaniesFixture, c.ContactsFixture, c.DealersFixture}
}

// Default values.
const (
	DefaultSFTPHost       = "sftptrans.fondsnet.de"
	DefaultSFTPPort       = 22
	DefaultSFTPUser       = "moneymeets"
	DefaultRemotePath     = "download/AB Konfi-Liste.xlsx"
	DefaultKeyEnv         = "FONDSNET_SFTP_SSH_KEY"
	DefaultKeyPath        = "~/.ssh/fondsnet-sftp"
	DefaultProxyEnv       = "QUOTAGUARDSTATIC_URL"
	DefaultConnectTimeout = 30 * time.Second

	DefaultS3Region  = "eu-central-1"
	DefaultS3Bucket  = "it.moneymeets.net"
	DefaultKeyPrefix = "fondsnet-konfi-lists"

	DefaultAuthorName    = "Sir Mergealot"
	DefaultAuthorEmail   = "mergealot@moneymeets.com"
	DefaultBaseBranch    = "master"
	DefaultFeatureBranch = "feature/automatic-fondsnet-data-import"
	DefaultCommitMessage = "feat(fixtures): update FONDSNET data"

	DefaultTokenEnv = "GITHUB_TOKEN"
	DefaultTeamFile = ".github/configs/fondsnet-data-team.yml"

	DefaultDownloadPath     = ".tmp/AB Konfi-Liste.xlsx"
	DefaultContactsFixture  = "moneymeets_tenants/data/fixtures/fondsnet-contacts.yaml"
	DefaultCompaniesFixture = "moneymeets_tenants/data/fixtures/fondsnet-companies.yaml"
	DefaultDealersFixture   = "moneymeets_tenants/data/fixtures/fondsnet-dealers.yaml"
)

// NewConfig returns a new Config with default values applied.
func NewConfig() *Config {
	return &Config{
		SFTP: SFTPConfig{
			Host:           DefaultSFTPHost,
			Port:           DefaultSFTPPort,
			User:           DefaultSFTPUser,
			RemotePath:     DefaultRemotePath,
			KeyEnv:         DefaultKeyEnv,
			KeyPath:        DefaultKeyPath,
			ProxyEnv:       DefaultProxyEnv,
			ConnectTimeout: DefaultConnectTimeout,
		},
		S3: S3Config{
			Region:    DefaultS3Region,
			Bucket:    DefaultS3Bucket,
			KeyPrefix: DefaultKeyPrefix,
		},
		Git: GitConfig{
			AuthorName:    DefaultAuthorName,
			AuthorEmail:   DefaultAuthorEmail,
			BaseBranch:    DefaultBaseBranch,
			FeatureBranch: DefaultFeatureBranch,
			CommitMessage: DefaultCommitMessage,
		},
		GitHub: GitHubConfig{
			TokenEnv: DefaultTokenEnv,
			TeamFile: DefaultTeamFile,
		},
		Paths: PathsConfig{
			Download:         DefaultDownloadPath,
			ContactsFixture:  DefaultContactsFixture,
			CompaniesFixture: DefaultCompaniesFixture,
			DealersFixture:   DefaultDealersFixture,
		},
	}
}

// ApplyDefaults applies default values to any unset fields.
// This is used after loading config from file to fill in missing values.
func (c *Config) ApplyDefaults() {
	defaults := NewConfig()

	if c.SFTP.Host == "" {
		c.SFTP.Host = defaults.SFTP.Host
	}
	if c.SFTP.Port == 0 {
		c.SFTP.Port = defaults.SFTP.Port
	}
	if c.SFTP.User == "" {
		c.SFTP.User = defaults.SFTP.User
	}
	if c.SFTP.RemotePath == "" {
		c.SFTP.RemotePath = defaults.SFTP.RemotePath
	}
	if c.SFTP.KeyEnv == "" {
		c.SFTP.KeyEnv = defaults.SFTP.KeyEnv
	}
	if c.SFTP.KeyPath == "" {
		c.SFTP.KeyPath = defaults.SFTP.KeyPath
	}
	if c.SFTP.ProxyEnv == "" {
		c.SFTP.ProxyEnv = defaults.SFTP.ProxyEnv
	}
	if c.SFTP.ConnectTimeout == 0 {
		c.SFTP.ConnectTimeout = defaults.SFTP.ConnectTimeout
	}

	if c.S3.Region == "" {
		c.S3.Region = defaults.S3.Region
	}
	if c.S3.Bucket == "" {
		c.S3.Bucket = defaults.S3.Bucket
	}
	if c.S3.KeyPrefix == "" {
		c.S3.KeyPrefix = defaults.S3.KeyPrefix
	}

	if c.Git.AuthorName == "" {
		c.Git.AuthorName = defaults.Git.AuthorName
	}
	if c.Git.AuthorEmail == "" {
		c.Git.AuthorEmail = defaults.Git.AuthorEmail
	}
	if c.Git.BaseBranch == "" {
		c.Git.BaseBranch = defaults.Git.BaseBranch
	}
	if c.Git.FeatureBranch == "" {
		c.Git.FeatureBranch = defaults.Git.FeatureBranch
	}
	if c.Git.CommitMessage == "" {
		c.Git.CommitMessage = defaults.Git.CommitMessage
	}

	if c.GitHub.TokenEnv == "" {
		c.GitHub.TokenEnv = defaults.GitHub.TokenEnv
	}
	if c.GitHub.TeamFile == "" {
		c.GitHub.TeamFile = defaults.GitHub.TeamFile
	}

	if c.Paths.Download == "" {
		c.Paths.Download = defaults.Paths.Download
	}
	if c.Paths.ContactsFixture == "" {
		c.Paths.ContactsFixture = defaults.Paths.ContactsFixture
	}
	if c.Paths.CompaniesFixture == "" {
		c.Paths.CompaniesFixture = defaults.Paths.CompaniesFixture
	}
	if c.Paths.DealersFixture == "" {
		c.Paths.DealersFixture = defaults.Paths.DealersFixture
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := "multiple validation errors:"
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.SFTP.Host == "" {
		errs = append(errs, &ValidationError{Field: "sftp.host", Message: "must not be empty"})
	}
	if c.SFTP.Port <= 0 || c.SFTP.Port > 65535 {
		errs = append(errs, &ValidationError{Field: "sftp.port", Message: "must be a valid port"})
	}
	if c.SFTP.ConnectTimeout < 0 {
		errs = append(errs, &ValidationError{Field: "sftp.connect_timeout", Message: "must be non-negative"})
	}

	if c.S3.Bucket == "" {
		errs = append(errs, &ValidationError{Field: "s3.bucket", Message: "must not be empty"})
	}

	if c.Git.FeatureBranch == c.Git.BaseBranch {
		errs = append(errs, &ValidationError{
			Field:   "git.feature_branch",
			Message: "must differ from git.base_branch",
		})
	}

	if c.GitHub.Repository != "" {
		if _, _, err := c.GitHub.SplitRepository(); err != nil {
			errs = append(errs, &ValidationError{Field: "github.repository", Message: err.Error()})
		}
	}

	// Fixture paths are committed to the repository; absolute paths would
	// break on other checkouts.
	for field, path := range map[string]string{
		"paths.contacts_fixture":  c.Paths.ContactsFixture,
		"paths.companies_fixture": c.Paths.CompaniesFixture,
		"paths.dealers_fixture":   c.Paths.DealersFixture,
	} {
		if path != "" && filepath.IsAbs(path) {
			errs = append(errs, &ValidationError{Field: field, Message: "must be a relative path"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
