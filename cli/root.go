package cli

import (
	"github.com/spf13/cobra"

	"github.com/embedd/embedd/pkg/version"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "embedd",
		Short:   "Local text-embedding inference service",
		Version: version.GetVersion(),
	}

	root.AddCommand(
		ServeCmd(),
	)

	return root
}
