package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/tact/internal/config"
	"github.com/zjrosen/tact/internal/entryapi"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get [key]",
			Short: "Print the effective configuration, or one key",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					if !o.v.IsSet(args[0]) {
						return fmt.Errorf("unknown config key %q", args[0])
					}
					if args[0] == "api_url" {
						fmt.Fprintln(out, o.cfg.APIURL)
						return nil
					}
					fmt.Fprintln(out, o.v.Get(args[0]))
					return nil
				}

				settings := o.v.AllSettings()
				settings["api_url"] = o.cfg.APIURL
				data, err := yaml.Marshal(settings)
				if err != nil {
					return fmt.Errorf("encoding config: %w", err)
				}
				_, err = out.Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "set-url <url>",
			Short: "Set the time-entry API base URL",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				url, err := o.saveAPIURL(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "api_url set to %s in %s\n", url, o.cfgPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), o.cfgPath)
			},
		},
	)
	return cmd
}

// saveAPIURL validates raw and writes it to the config file in use.
func (o *rootOptions) saveAPIURL(raw string) (string, error) {
	if _, err := entryapi.New(raw).EntriesURL(); err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	url, err := config.SaveAPIURL(o.cfgPath, raw)
	if err != nil {
		return "", fmt.Errorf("saving config: %w", err)
	}
	o.cfg.APIURL = url
	return url, nil
}
