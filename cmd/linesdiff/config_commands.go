package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"linesdiff/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit [scan] to tune depths and thresholds, and set [report] path to keep a report file.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configExists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

// effectiveScan mirrors config.Scan with thresholds resolved for the mode.
type effectiveScan struct {
	Left          int     `toml:"left" json:"left"`
	Top           int     `toml:"top" json:"top"`
	Right         int     `toml:"right" json:"right"`
	Bottom        int     `toml:"bottom" json:"bottom"`
	TL            float64 `toml:"tl" json:"tl"`
	TT            float64 `toml:"tt" json:"tt"`
	TR            float64 `toml:"tr" json:"tr"`
	TB            float64 `toml:"tb" json:"tb"`
	ThresholdMode string  `toml:"threshold_mode" json:"threshold_mode"`
	TagMode       string  `toml:"tag_mode" json:"tag_mode"`
}

type effectiveConfig struct {
	Scan    effectiveScan  `toml:"scan" json:"scan"`
	Report  config.Report  `toml:"report" json:"report"`
	Logging config.Logging `toml:"logging" json:"logging"`
	History config.History `toml:"history" json:"history"`
	Tools   config.Tools   `toml:"tools" json:"tools"`
}

func newEffectiveConfig(cfg *config.Config) effectiveConfig {
	thresholds := cfg.Thresholds()
	return effectiveConfig{
		Scan: effectiveScan{
			Left:          cfg.Scan.Left,
			Top:           cfg.Scan.Top,
			Right:         cfg.Scan.Right,
			Bottom:        cfg.Scan.Bottom,
			TL:            thresholds[0],
			TT:            thresholds[1],
			TR:            thresholds[2],
			TB:            thresholds[3],
			ThresholdMode: cfg.Scan.ThresholdMode,
			TagMode:       cfg.Scan.TagMode,
		},
		Report:  cfg.Report,
		Logging: cfg.Logging,
		History: cfg.History,
		Tools:   cfg.Tools,
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			view := newEffectiveConfig(cfg)
			if asJSON {
				return writeJSON(cmd, view)
			}
			data, err := toml.Marshal(view)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# source: %s\n", ctx.configPath)
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
