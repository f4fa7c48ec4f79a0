package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coverwallet/httplog/internal/app"
	"github.com/coverwallet/httplog/internal/config"
	"github.com/coverwallet/httplog/internal/logger"
	"github.com/coverwallet/httplog/internal/version"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "httplog [flags] {urls}",
		Short: "Send HTTP requests and log every exchange.",
		Long: `httplog sends HTTP requests to the given URLs and logs each exchange:
- the connection, method and URL
- request headers and data
- response status, timing, headers and body

Bodies are decompressed and decoded before they are shown; binary bodies are
never printed. Output can be verbose, a single compact line, or JSON.`,
		Version:          version.Full(),
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, urls []string) {
			ctx := cmd.Context()

			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(ctx, "Failed to parse flags: %v", err)
			}

			logger.SetLevel(appConfig.ParsedLogLevel)

			opts, err := requestOptionsFromFlags(cmd.Flags())
			if err != nil {
				logger.Fatalf(ctx, "Failed to parse flags: %v", err)
			}

			if err = app.ExecuteRootCommand(ctx, appConfig, opts, urls); err != nil {
				logger.Fatalf(ctx, "Failed to execute requests: %v", err)
			}
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	addLogFlags(rootCmd.PersistentFlags())
	addRequestFlags(rootCmd.Flags())

	rootCmd.AddCommand(graphqlCmd, configCmd)
}

// addLogFlags declares the flags overriding the logging configuration.
func addLogFlags(flags *pflag.FlagSet) {
	flags.Bool("compact", false, "log each exchange as a single line.")
	flags.Bool("json", false, "log each exchange as a JSON object (wins over --compact).")
	flags.Bool("headers", false, "log request and response headers.")
	flags.Bool("no-data", false, "do not log request data.")
	flags.Bool("no-response", false, "do not log response bodies.")
	flags.String("color", "", "foreground color of log lines, for example: red, bright_blue.")
	flags.String("background", "", "background color of log lines.")
	flags.String("prefix", "", "prefix of every log line (default is '[httplog] ').")
	flags.Bool("prefix-lines", false, "log every response body line separately.")
	flags.Bool("line-numbers", false, "number response body lines (requires --prefix-lines).")
	flags.String("whitelist", "", "only log URLs matching this regular expression.")
	flags.String("blacklist", "", "never log URLs matching this regular expression.")
	flags.String("severity", "", "level exchanges are logged at: debug, info, warn, error.")
	flags.StringSlice("filter", nil, "parameter or header names whose values are masked.")
	flags.String("max-body", "", "truncate logged bodies, for example: 4KB, 1MB.")
	flags.String("log-level", "", "process log level: debug, info, warn, error.")
	flags.String("timeout", "", "request timeout, for example: 10s, 1m.")
}

// addRequestFlags declares the flags describing the requests to send.
func addRequestFlags(flags *pflag.FlagSet) {
	flags.StringP("method", "X", "", "HTTP method (default is GET, or POST with --data).")
	flags.StringP("data", "d", "", "request body.")
	flags.StringArrayP("header", "H", nil, "request header in 'Name: value' form, may be repeated.")
	flags.BoolP("head", "I", false, "send HEAD requests.")
	flags.StringP("user-agent", "A", "", "User-Agent header sent when none is given.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}
}

//nolint:cyclop,funlen // Each flag is bound by its own sequential check.
func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	changed := func(name string) bool {
		flag := flags.Lookup(name)

		return flag != nil && flag.Changed
	}

	if changed("compact") {
		cfg.CompactLog, _ = flags.GetBool("compact")
	}

	if changed("json") {
		cfg.JSONLog, _ = flags.GetBool("json")
	}

	if changed("headers") {
		cfg.LogHeaders, _ = flags.GetBool("headers")
	}

	if changed("no-data") {
		noData, _ := flags.GetBool("no-data")
		cfg.LogData = !noData
	}

	if changed("no-response") {
		noResponse, _ := flags.GetBool("no-response")
		cfg.LogResponse = !noResponse
	}

	if changed("color") {
		cfg.Color, _ = flags.GetString("color")
	}

	if changed("background") {
		cfg.Background, _ = flags.GetString("background")
	}

	if changed("prefix") {
		cfg.Prefix, _ = flags.GetString("prefix")
	}

	if changed("prefix-lines") {
		cfg.PrefixResponseLines, _ = flags.GetBool("prefix-lines")
	}

	if changed("line-numbers") {
		cfg.PrefixLineNumbers, _ = flags.GetBool("line-numbers")
	}

	if changed("whitelist") {
		cfg.URLWhitelistPattern, _ = flags.GetString("whitelist")
	}

	if changed("blacklist") {
		cfg.URLBlacklistPattern, _ = flags.GetString("blacklist")
	}

	if changed("severity") {
		cfg.Severity, _ = flags.GetString("severity")
	}

	if changed("filter") {
		cfg.FilterParameters, _ = flags.GetStringSlice("filter")
	}

	if changed("max-body") {
		cfg.MaxBodyLength, _ = flags.GetString("max-body")
	}

	if changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if changed("timeout") {
		cfg.Timeout, _ = flags.GetString("timeout")
	}

	if changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}

	return config.ValidateConfig(cfg)
}

func requestOptionsFromFlags(flags *pflag.FlagSet) (app.RequestOptions, error) {
	var (
		opts app.RequestOptions
		err  error
	)

	if opts.Method, err = flags.GetString("method"); err != nil {
		return opts, fmt.Errorf("failed to read method: %w", err)
	}

	if opts.Data, err = flags.GetString("data"); err != nil {
		return opts, fmt.Errorf("failed to read data: %w", err)
	}

	if opts.Headers, err = flags.GetStringArray("header"); err != nil {
		return opts, fmt.Errorf("failed to read headers: %w", err)
	}

	if opts.Head, err = flags.GetBool("head"); err != nil {
		return opts, fmt.Errorf("failed to read head: %w", err)
	}

	return opts, nil
}
