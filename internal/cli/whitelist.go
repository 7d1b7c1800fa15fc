package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newWhitelistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "whitelist",
		Aliases: []string{"wl"},
		Short:   "Whitelist management commands",
	}

	cmd.AddCommand(newWhitelistAddCmd())
	cmd.AddCommand(newWhitelistRemoveCmd())
	cmd.AddCommand(newWhitelistListCmd())
	cmd.AddCommand(newWhitelistClearCmd())

	return cmd
}

func newWhitelistAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <identity>...",
		Short: "Add players to the whitelist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ChangeResult
			req := map[string][]string{"identities": args}
			if err := client.Post("/api/v1/whitelist", req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newWhitelistRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <identity>...",
		Short: "Remove players from the whitelist and kick them if online",
		Args:  cobra.MinimumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return completeWhitelisted(toComplete), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ChangeResult
			req := map[string][]string{"identities": args}
			if err := client.Delete("/api/v1/whitelist", req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newWhitelistListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the whitelist",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WhitelistResult
			if err := client.Get("/api/v1/whitelist", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newWhitelistClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every player from the whitelist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				output(cmd).Print(MessageResult{Message: "Refusing to clear without --yes"})
				return nil
			}
			var result ChangeResult
			if err := client.Post("/api/v1/whitelist/clear", nil, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm clearing the whitelist")

	return cmd
}

// completeWhitelisted suggests whitelisted identities, case-insensitively by prefix
func completeWhitelisted(prefix string) []string {
	if client == nil {
		return nil
	}
	var result WhitelistResult
	if err := client.Get("/api/v1/whitelist", &result); err != nil {
		return nil
	}
	var out []string
	for _, id := range result.Identities {
		if strings.HasPrefix(strings.ToLower(id), strings.ToLower(prefix)) {
			out = append(out, id)
		}
	}
	return out
}
