package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Manage crontab backups",
}

func init() {
	backupsCmd.AddCommand(backupsListCmd)
	backupsCmd.AddCommand(backupsCreateCmd)
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		backups, err := a.Store().ListBackups()
		if err != nil {
			return err
		}
		if len(backups) == 0 {
			fmt.Println("No backups.")
			return nil
		}
		fmt.Printf("%-20s %-20s %s\n", "Label", "Created", "File")
		for _, b := range backups {
			fmt.Printf("%-20s %-20s %s\n",
				b.Label, b.Timestamp.Format("2006-01-02 15:04:05"), b.Name)
		}
		return nil
	},
}

var backupsCreateLabel string

var backupsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the current crontab file",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := a.Store().Backup(backupsCreateLabel)
		if err != nil {
			return err
		}
		fmt.Printf("Created backup %s\n", b.Name)
		return nil
	},
}

func init() {
	backupsCreateCmd.Flags().StringVarP(&backupsCreateLabel, "label", "l", "manual", "Backup label")
}
