package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Turn whitelist enforcement on",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setEnabled(cmd, true)
		},
	}
}

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Turn whitelist enforcement off; everyone is admitted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setEnabled(cmd, false)
		},
	}
}

func setEnabled(cmd *cobra.Command, enabled bool) error {
	var result ChangeResult
	if err := client.Put("/api/v1/settings/enabled", map[string]bool{"enabled": enabled}, &result); err != nil {
		return err
	}
	output(cmd).Print(result)
	return nil
}

func newMessageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "message <text>...",
		Short: "Set the message shown to players who are not whitelisted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ChangeResult
			req := map[string]string{"message": strings.Join(args, " ")}
			if err := client.Put("/api/v1/settings/kick-message", req, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newIntervalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interval <value>",
		Short: "Set how often connected players are rechecked",
		Long: `Set the recheck interval. Accepts a positive integer with an optional
unit: 30s, 5m, 2h. A bare number is seconds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ChangeResult
			if err := client.Put("/api/v1/settings/interval", map[string]string{"interval": args[0]}, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Re-read settings from storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ChangeResult
			if err := client.Post("/api/v1/reload", nil, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show gate status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatusResult
			if err := client.Get("/api/v1/status", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Recheck connected players now and kick non-members",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ChangeResult
			if err := client.Post("/api/v1/check", nil, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}

func newGateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gate <identity>",
		Short: "Ask whether a player would be admitted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DecisionResult
			if err := client.Post("/api/v1/gate/check", map[string]string{"identity": args[0]}, &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	}
}
