package cmd

import (
	"github.com/spf13/cobra"

	"github.com/v-the-cmd/fondsnet-import/internal/github"
	"github.com/v-the-cmd/fondsnet-import/internal/gitops"
	"github.com/v-the-cmd/fondsnet-import/internal/logging"
)

// Title and description of the automatically maintained pull request.
const (
	pullTitle = "Update FONDSNET data"
	pullBody  = "This PR was created automatically. Check the updated FONDSNET data."
)

// pushCmd represents the check-and-push-changes command.
var pushCmd = &cobra.Command{
	Use:   "check-and-push-changes",
	Short: "Commit and push fixture changes and maintain the pull request",
	Long: `Commit modified fixture files, push the feature branch, and make sure
an open pull request with the configured reviewers exists.

Followup commits on an existing branch are created as fixup commits so they
squash into the first one on merge. Without modified files the command is a
no-op.`,
	RunE: runCheckAndPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

// runCheckAndPush handles the check-and-push-changes command.
func runCheckAndPush(cmd *cobra.Command, args []string) error {
	git := gitops.New(".", cfg.Git, logging.Global())

	if err := git.ConfigureUser(cmd.Context()); err != nil {
		return err
	}

	modified, err := git.HasModifiedFiles(cmd.Context())
	if err != nil {
		return err
	}
	if !modified {
		cmd.Println("No modified files, nothing to push")
		return nil
	}

	client, err := github.NewFromConfig(cfg.GitHub)
	if err != nil {
		return err
	}

	// A remote feature branch means a previous run already pushed a commit.
	branchExists, err := client.BranchExists(cmd.Context(), cfg.Git.FeatureBranch)
	if err != nil {
		return err
	}

	if err := git.CommitAll(cmd.Context(), branchExists); err != nil {
		return err
	}
	if err := git.Push(cmd.Context(), !branchExists); err != nil {
		return err
	}

	team, err := github.LoadTeam(cfg.GitHub.TeamFile)
	if err != nil {
		return err
	}

	pull, created, err := client.EnsurePullRequest(cmd.Context(),
		pullTitle, pullBody,
		cfg.Git.FeatureBranch, cfg.Git.BaseBranch,
		team.Members)
	if err != nil {
		return err
	}

	if created {
		cmd.Printf("Opened pull request #%d: %s\n", pull.Number, pull.HTMLURL)
	} else {
		cmd.Printf("Updated pull request #%d: %s\n", pull.Number, pull.HTMLURL)
	}
	return nil
}
