package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewPolicyCmd creates the policy command.
func NewPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the effective sanitization policy",
		Long: `Policy prints the table the sanitizer applies: allowed elements,
attributes, URI schemes and data URI media types, after the config file's
policy changes. It fails if the configured policy is unsafe.

Examples:
  # Show the effective policy
  easysvg policy

  # Show the built-in strict table
  easysvg policy -p strict

  # Feed the effective table to another tool
  easysvg policy --json | jq .schemes`,
		Args: cobra.NoArgs,
		RunE: runPolicyCmd,
	}

	cmd.Flags().StringP("policy", "p", "",
		"Built-in policy: default or strict (a policy in the config file wins)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON instead of YAML")

	return cmd
}

// runPolicyCmd executes the policy command.
func runPolicyCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("policy") {
		if cfg.PolicyName, err = cmd.Flags().GetString("policy"); err != nil {
			return err
		}
	}

	table, err := cfg.Policy()
	if err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), table.Summary())
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(table.Summary()); err != nil {
		return fmt.Errorf("failed to encode policy: %w", err)
	}
	return enc.Close()
}
