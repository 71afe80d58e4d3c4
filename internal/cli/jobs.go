package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cronkeeper/internal/jobs"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage crontab jobs",
}

func init() {
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsAddCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsRemoveCmd)
	jobsCmd.AddCommand(jobsEnableCmd)
	jobsCmd.AddCommand(jobsDisableCmd)
}

// ---- list ------------------------------------------------------------------

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List managed jobs",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.Jobs().List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No managed jobs.")
			return nil
		}
		fmt.Printf("%-38s %-20s %-18s %-9s %s\n", "ID", "Name", "Schedule", "Status", "Command")
		for _, j := range list {
			status := "enabled"
			if !j.Enabled {
				status = "disabled"
			}
			fmt.Printf("%-38s %-20s %-18s %-9s %s\n",
				j.ID, truncStr(j.Name, 19), truncStr(j.Schedule, 17), status, j.Command)
		}
		return nil
	},
}

// ---- add -------------------------------------------------------------------

var (
	jobsAddName     string
	jobsAddDesc     string
	jobsAddSchedule string
	jobsAddCommand  string
	jobsAddEnv      map[string]string
	jobsAddDisabled bool
)

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a managed job",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		enabled := !jobsAddDisabled
		j, err := a.Jobs().Create(jobs.CreateInput{
			Name:        jobsAddName,
			Description: jobsAddDesc,
			Schedule:    jobsAddSchedule,
			Command:     jobsAddCommand,
			Environment: jobsAddEnv,
			Enabled:     &enabled,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added job %q (%s)\n", j.Name, j.ID)
		return nil
	},
}

func init() {
	jobsAddCmd.Flags().StringVarP(&jobsAddName, "name", "n", "", "Job name (required)")
	jobsAddCmd.Flags().StringVarP(&jobsAddDesc, "description", "d", "", "Job description")
	jobsAddCmd.Flags().StringVarP(&jobsAddSchedule, "schedule", "s", "", "Cron schedule, e.g. '0 5 * * *' (required)")
	jobsAddCmd.Flags().StringVarP(&jobsAddCommand, "command", "c", "", "Command to run (required)")
	jobsAddCmd.Flags().StringToStringVar(&jobsAddEnv, "env", nil, "Per-job environment, NAME=value")
	jobsAddCmd.Flags().BoolVar(&jobsAddDisabled, "disabled", false, "Create the job commented out")

	_ = jobsAddCmd.MarkFlagRequired("name")
	_ = jobsAddCmd.MarkFlagRequired("schedule")
	_ = jobsAddCmd.MarkFlagRequired("command")
}

// ---- show ------------------------------------------------------------------

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show one managed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		j, err := a.Jobs().Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:          %s\n", j.ID)
		fmt.Printf("Name:        %s\n", j.Name)
		if j.Description != "" {
			fmt.Printf("Description: %s\n", j.Description)
		}
		fmt.Printf("Schedule:    %s\n", j.Schedule)
		fmt.Printf("Command:     %s\n", j.Command)
		for k, v := range j.Environment {
			fmt.Printf("Env:         %s=%s\n", k, v)
		}
		status := "enabled"
		if !j.Enabled {
			status = "disabled"
		}
		fmt.Printf("Status:      %s\n", status)
		if !j.Created.IsZero() {
			fmt.Printf("Created:     %s\n", j.Created.Format("2006-01-02 15:04:05"))
		}
		if !j.Updated.IsZero() {
			fmt.Printf("Updated:     %s\n", j.Updated.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// ---- remove / enable / disable ---------------------------------------------

var jobsRemoveCmd = &cobra.Command{
	Use:   "remove <job-id>",
	Short: "Remove a managed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Jobs().Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed job %s\n", args[0])
		return nil
	},
}

var jobsEnableCmd = &cobra.Command{
	Use:   "enable <job-id>",
	Short: "Enable a job",
	Args:  cobra.ExactArgs(1),
	RunE:  func(_ *cobra.Command, args []string) error { return setEnabled(args[0], true) },
}

var jobsDisableCmd = &cobra.Command{
	Use:   "disable <job-id>",
	Short: "Disable a job (comment its lines out)",
	Args:  cobra.ExactArgs(1),
	RunE:  func(_ *cobra.Command, args []string) error { return setEnabled(args[0], false) },
}

func setEnabled(id string, enabled bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Jobs().SetEnabled(id, enabled); err != nil {
		return err
	}
	action := "enabled"
	if !enabled {
		action = "disabled"
	}
	fmt.Printf("Job %s %s\n", id, action)
	return nil
}

func truncStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
