package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/ui-inventory-mcp/internal/config"
	"github.com/ironsheep/ui-inventory-mcp/internal/httpapi"
	"github.com/ironsheep/ui-inventory-mcp/internal/inventory"
	"github.com/ironsheep/ui-inventory-mcp/internal/logger"
	"github.com/ironsheep/ui-inventory-mcp/internal/metrics"
	"github.com/ironsheep/ui-inventory-mcp/internal/server"
)

// cli holds the state shared by all subcommands of one invocation.
type cli struct {
	configPath string
	logLevel   string
	strategy   string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "ui-inventory",
		Short: "Detect UI components in screenshots and validate them against fixtures",
		Long: `ui-inventory finds buttons, cards, inputs, nav items and containers in
screenshots, measures their style, and scores detections against fixture
test cases. It runs as an MCP server over stdio, as an HTTP API, or as a
one-shot command.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { logger.Sync() },
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		c.mcpCmd(),
		c.serveCmd(),
		c.detectCmd(),
		c.styleCmd(),
		c.validateCmd(),
		c.batchCmd(),
		c.casesCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		return err
	}
	c.cfg = cfg
	logger.L().Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("strategy", cfg.Detection.Strategy),
		zap.Bool("ocr", cfg.OCR.Enabled))
	return nil
}

func (c *cli) service(m *metrics.Metrics) (*inventory.Service, error) {
	return inventory.New(c.cfg, m)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) addStrategyFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.strategy, "strategy", "", "region extraction strategy: edge or similarity (default from config)")
}

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(nil)
			if err != nil {
				return err
			}
			logger.L().Info("ui-inventory MCP server starting",
				zap.String("version", Version),
				zap.String("build_time", BuildTime),
				zap.String("git_commit", GitCommit))
			return server.New(svc, Version).Run(cmd.Context())
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.HTTP.Addr = addr
			}
			m := metrics.New()
			svc, err := c.service(m)
			if err != nil {
				return err
			}
			return httpapi.New(svc, m, c.cfg.HTTP, Version).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (c *cli) detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect components in a screenshot and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(nil)
			if err != nil {
				return err
			}
			res, err := svc.Detect(cmd.Context(), args[0], c.strategy)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	c.addStrategyFlag(cmd)
	return cmd
}

func (c *cli) styleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "style <image>",
		Short: "Extract the color palette and typography scale of a screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(nil)
			if err != nil {
				return err
			}
			report, err := svc.Style(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}

func (c *cli) validateCmd() *cobra.Command {
	var testCase string
	cmd := &cobra.Command{
		Use:   "validate <image>",
		Short: "Detect components and validate them against a fixture test case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(nil)
			if err != nil {
				return err
			}
			res, err := svc.Validate(cmd.Context(), args[0], testCase, c.strategy)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&testCase, "case", "", "fixture test case id")
	_ = cmd.MarkFlagRequired("case")
	c.addStrategyFlag(cmd)
	return cmd
}

func (c *cli) batchCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "batch <image>...",
		Short: "Detect components in several screenshots in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers > 0 {
				c.cfg.Batch.Workers = workers
			}
			svc, err := c.service(nil)
			if err != nil {
				return err
			}
			items, err := svc.Batch(cmd.Context(), args, c.strategy)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel detections (default from config)")
	c.addStrategyFlag(cmd)
	return cmd
}

func (c *cli) casesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cases",
		Short: "List the fixture test cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), svc.TestCases())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Overrides the root setup so version never needs a valid config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ui-inventory %s\n", Version)
			fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
			return nil
		},
	}
}
