package cmd

import (
	"github.com/spf13/cobra"
)

var backupJobName string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run a single job immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp()
		if err != nil {
			return err
		}
		defer application.Shutdown()

		return application.RunJobOnce(cmd.Context(), backupJobName)
	},
}

func init() {
	backupCmd.Flags().StringVarP(&backupJobName, "job", "j", "", "name of the job to run")
	_ = backupCmd.MarkFlagRequired("job")
}
