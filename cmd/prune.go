package cmd

import (
	"github.com/spf13/cobra"
)

var pruneJobName string

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply retention to job folders immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.Shutdown()

		return application.PruneOnce(pruneJobName)
	},
}

func init() {
	pruneCmd.Flags().StringVarP(&pruneJobName, "job", "j", "", "limit the pass to one job")
}
