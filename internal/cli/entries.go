package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List every schedule line, managed or not",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Jobs().ListAll()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Empty crontab.")
			return nil
		}
		fmt.Printf("%-9s %-9s %-20s %-18s %s\n", "Origin", "Status", "Name", "Schedule", "Command")
		for _, e := range entries {
			origin := "system"
			name := strings.Join(e.Comments, "; ")
			if e.Managed {
				origin = "managed"
				name = e.Name
			}
			status := "enabled"
			if !e.Enabled {
				status = "disabled"
			}
			fmt.Printf("%-9s %-9s %-20s %-18s %s\n",
				origin, status, truncStr(name, 19), truncStr(e.Schedule, 17), e.Command)
		}
		return nil
	},
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show global crontab environment variables",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		env, err := a.Jobs().GlobalEnvironment()
		if err != nil {
			return err
		}
		if len(env) == 0 {
			fmt.Println("No global environment variables.")
			return nil
		}
		keys := make([]string, 0, len(env))
		for k := range env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s=%s\n", k, env[k])
		}
		return nil
	},
}
