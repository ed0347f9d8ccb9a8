package errors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/assembler"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/capture"
	"github.com/sthembisoo/raygun-reporter/cmd/raygun/config"
)

var (
	configPath string
	raygunKey  string
	tags       []string
	customData map[string]string
)

func NewCmdRaygunErrors() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "errors",
		Short: "Send error reports to raygun",
		Long: `Send error reports to raygun.

Useful for checking that an API key and endpoint accept reports before
wiring the reporter into a service.

Examples:
  # Report a plain message
  raygun-reporter errors message "disk nearly full" --data region=us-east

  # Report an error with the current stack trace
  raygun-reporter errors exception "order 42 not found" --tag smoke-test

  # Use a config file instead of RAYGUN_* environment variables
  raygun-reporter errors message "hello" --config raygun.yaml`,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVarP(&raygunKey, "token", "t", "", "Raygun API key (or set RAYGUN_API_KEY env var)")
	cmd.PersistentFlags().StringSliceVar(&tags, "tag", nil, "Tag to attach to the report (repeatable)")
	cmd.PersistentFlags().StringToStringVarP(&customData, "data", "d", nil, "Custom data key=value pairs")

	cmd.AddCommand(&cobra.Command{
		Use:   "message <text>",
		Short: "Report a plain message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter, err := newReporter()
			if err != nil {
				return err
			}
			if err := reporter.CaptureMessage(args[0], extra()); err != nil {
				return fmt.Errorf("failed to report message: %w", err)
			}
			fmt.Println("Message reported")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "exception <text>",
		Short: "Report an error with the current stack trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter, err := newReporter()
			if err != nil {
				return err
			}
			if err := reporter.Capture(goerrors.New(args[0]), extra()); err != nil {
				return fmt.Errorf("failed to report exception: %w", err)
			}
			fmt.Println("Exception reported")
			return nil
		},
	})

	return cmd
}

func newReporter() (*capture.Reporter, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// Flag takes precedence over config
	if raygunKey != "" {
		cfg.APIKey = raygunKey
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("raygun API key required: use --token flag or set RAYGUN_API_KEY environment variable")
	}

	log.WithField("endpoint", cfg.Endpoint).Debug("Reporting to raygun")
	return capture.New(cfg), nil
}

func extra() map[string]any {
	data := lo.MapValues(customData, func(v string, _ string) any { return v })
	if len(tags) > 0 {
		data[assembler.TagsKey] = tags
	}
	return data
}
