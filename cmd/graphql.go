package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coverwallet/httplog/internal/app"
	"github.com/coverwallet/httplog/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var graphqlCmd = &cobra.Command{
	Use:   "graphql [flags] <endpoint> <query>",
	Short: "Run a GraphQL operation and log the exchange.",
	Args:  cobra.ExactArgs(2), //nolint:mnd // Endpoint and query.
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
			logger.Fatalf(ctx, "Failed to parse flags: %v", err)
		}

		logger.SetLevel(appConfig.ParsedLogLevel)

		opts, err := graphQLOptionsFromFlags(cmd)
		if err != nil {
			logger.Fatalf(ctx, "Failed to parse flags: %v", err)
		}

		opts.Query = args[1]

		data, err := app.ExecuteGraphQLCommand(ctx, appConfig, args[0], opts)
		if err != nil {
			logger.Fatalf(ctx, "Failed to execute query: %v", err)
		}

		output, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			logger.Fatalf(ctx, "Failed to encode result: %v", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(output))
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	flags := graphqlCmd.Flags()

	flags.StringToStringP("var", "v", nil, "string variable of the operation in name=value form, may be repeated.")
	flags.StringArrayP("header", "H", nil, "request header in 'Name: value' form, may be repeated.")
	flags.StringP("user-agent", "A", "", "User-Agent header sent when none is given.")
}

func graphQLOptionsFromFlags(cmd *cobra.Command) (app.GraphQLOptions, error) {
	var (
		opts app.GraphQLOptions
		err  error
	)

	flags := cmd.Flags()

	if opts.Variables, err = flags.GetStringToString("var"); err != nil {
		return opts, fmt.Errorf("failed to read variables: %w", err)
	}

	if opts.Headers, err = flags.GetStringArray("header"); err != nil {
		return opts, fmt.Errorf("failed to read headers: %w", err)
	}

	return opts, nil
}
