package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "widgetcheck",
		Short: "Run browser checks against the practice automation widgets",
		Long: `widgetcheck drives a headless browser through the form fields, popups,
slider and JavaScript delay pages and reports one result per scenario.

Configuration is read from the environment (and a .env file if present).
Without BASE_URL the bundled fixture site is started on a local port.

Example:
  widgetcheck run --suite popups --suite slider
  widgetcheck run --base-url https://practice-automation.com`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd(), newListCmd())
	return root
}
