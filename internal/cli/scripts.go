package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cronkeeper/internal/discovery"
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "Discover runnable scripts under the script root",
}

func init() {
	scriptsCmd.AddCommand(scriptsListCmd)
	scriptsCmd.AddCommand(scriptsArgsCmd)
}

var scriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered scripts",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		eng, err := a.Engine()
		if err != nil {
			return err
		}
		if eng == nil {
			fmt.Println("No script root configured (set KOHA_CRON_PATH in the crontab or SCRIPT_ROOT).")
			return nil
		}
		scripts, err := eng.Discover()
		if err != nil {
			return err
		}
		if len(scripts) == 0 {
			fmt.Println("No scripts found.")
			return nil
		}
		fmt.Printf("%-28s %-6s %s\n", "Script", "Type", "Description")
		for _, s := range scripts {
			fmt.Printf("%-28s %-6s %s\n", s.RelPath, s.Type, truncStr(s.Description, 60))
		}
		return nil
	},
}

var scriptsArgsCmd = &cobra.Command{
	Use:   "args <script-path>",
	Short: "Show a script's documentation and argument surface",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		eng, err := a.Engine()
		if err != nil {
			return err
		}
		if eng == nil {
			return fmt.Errorf("no script root configured")
		}
		script, err := eng.ValidateCommand(args[0])
		if err != nil {
			return err
		}

		summary, usage := eng.Describe(script.Path)
		fmt.Printf("Script: %s\n", script.RelPath)
		if summary != "" {
			fmt.Printf("Summary: %s\n", summary)
		}
		if usage != "" {
			fmt.Printf("\n%s\n", usage)
		}

		parsed := eng.ParseOptions(script.Path)
		if len(parsed.Options) > 0 {
			fmt.Println("\nOptions:")
			for _, o := range parsed.Options {
				line := "  --" + o.Name
				if o.ShortName != "" {
					line += ", -" + o.ShortName
				}
				if o.Type != discovery.TypeBoolean && o.Type != discovery.TypeIncremental {
					line += " <" + o.Type + ">"
					if !o.Required {
						line += " (optional value)"
					}
				}
				fmt.Println(line)
			}
		}
		if len(parsed.Positional) > 0 {
			fmt.Println("\nPositional arguments:")
			for _, p := range parsed.Positional {
				label := p.Label
				if label == "" {
					label = fmt.Sprintf("arg %d", p.Position)
				}
				if p.Variadic {
					fmt.Printf("  %s... (%s)\n", label, p.Source)
				} else {
					fmt.Printf("  %s (%s)\n", label, p.Source)
				}
			}
		}
		return nil
	},
}
