package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the bytelog client.
// It registers the log command group.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "bytelog",
		Short: "bytelog client commands",
	}
	root.AddCommand(NewLogCommand(baseURL))
	return root
}
