package main

import (
	"fmt"

	"github.com/gti/practice-automation-e2e/e2e/suites"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// suiteEntry is the YAML output of the list command.
type suiteEntry struct {
	Suite     string   `yaml:"suite"`
	Path      string   `yaml:"path"`
	Scenarios []string `yaml:"scenarios"`
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List suites and their scenarios",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	var entries []suiteEntry
	for _, s := range suites.All() {
		scenarios, err := s.Build()
		if err != nil {
			return fmt.Errorf("failed to build suite %s: %w", s.Name, err)
		}
		entry := suiteEntry{Suite: s.Name, Path: s.Path}
		for _, sc := range scenarios {
			entry.Scenarios = append(entry.Scenarios, sc.Name)
		}
		entries = append(entries, entry)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("failed to write suites: %w", err)
	}
	return enc.Close()
}
