package cmd

import (
	"github.com/spf13/cobra"

	"github.com/v-the-cmd/fondsnet-import/internal/github"
	"github.com/v-the-cmd/fondsnet-import/internal/gitops"
	"github.com/v-the-cmd/fondsnet-import/internal/logging"
)

// branchCmd represents the set-up-branch command.
var branchCmd = &cobra.Command{
	Use:   "set-up-branch",
	Short: "Configure the commit author and check out the import branch",
	Long: `Prepare the repository for an automated import commit.

Sets the local commit author and checks out the feature branch, creating it
when it does not exist on the remote yet.`,
	RunE: runSetUpBranch,
}

func init() {
	rootCmd.AddCommand(branchCmd)
}

// runSetUpBranch handles the set-up-branch command.
func runSetUpBranch(cmd *cobra.Command, args []string) error {
	client, err := github.NewFromConfig(cfg.GitHub)
	if err != nil {
		return err
	}

	exists, err := client.BranchExists(cmd.Context(), cfg.Git.FeatureBranch)
	if err != nil {
		return err
	}

	git := gitops.New(".", cfg.Git, logging.Global())
	if err := git.ConfigureUser(cmd.Context()); err != nil {
		return err
	}
	if err := git.CheckoutFeatureBranch(cmd.Context(), exists); err != nil {
		return err
	}

	cmd.Printf("On branch %s\n", cfg.Git.FeatureBranch)
	return nil
}
