// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the vision-md CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/vision-md/internal/secrets"
	"github.com/pdiddy/vision-md/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the vision-md CLI.
var rootCmd = &cobra.Command{
	Use:   "vision-md",
	Short: "Convert PDF documents to Markdown with a vision model",
	Long: `vision-md converts PDF documents into structured Markdown by delegating
visual and textual interpretation to a hosted multimodal vision model.

Two pipelines are available as subcommands: "ocr" renders each page to a
size-capped image and has the model transcribe it verbatim; "describe"
extracts the document structurally and replaces every embedded image with
a model-written description grounded in its surrounding text.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./vision-md.yaml or ~/.config/vision-md/config.yaml)")
	rootCmd.PersistentFlags().Int("workers", 0, "size of the model-call worker pool (overrides config)")
	rootCmd.PersistentFlags().String("on-error", "", "per-page/image failure policy: skip or abort (overrides config)")
	rootCmd.PersistentFlags().String("report", "", "write a YAML run report to this path")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("vision-md")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "vision-md"))
		}
	}

	viper.SetEnvPrefix("VISION_MD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Conventional environment names honored alongside the VISION_MD_ prefix.
	viper.BindEnv("vision.endpoint", "VISION_MD_VISION_ENDPOINT", "PROJECT_ENDPOINT")
	viper.BindEnv("vision.deployment", "VISION_MD_VISION_DEPLOYMENT", "MODEL_DEPLOYMENT_NAME")
	viper.BindEnv("vision.api_version", "VISION_MD_VISION_API_VERSION", "AZURE_OPENAI_API_VERSION")
	viper.BindEnv("vision.api_key", "VISION_MD_VISION_API_KEY", "OPENAI_API_KEY")
	viper.BindEnv("context.before_chars", "VISION_MD_CONTEXT_BEFORE_CHARS", "VISION_CONTEXT_BEFORE_CHARS")
	viper.BindEnv("context.after_chars", "VISION_MD_CONTEXT_AFTER_CHARS", "VISION_CONTEXT_AFTER_CHARS")
	viper.BindEnv("context.max_chars", "VISION_MD_CONTEXT_MAX_CHARS", "VISION_MAX_CONTEXT_CHARS")

	def := types.DefaultPipelineConfig()
	viper.SetDefault("vision.deployment", def.Vision.Deployment)
	viper.SetDefault("vision.api_version", def.Vision.APIVersion)
	viper.SetDefault("vision.max_retries", def.Vision.MaxRetries)
	viper.SetDefault("vision.page_tokens", def.Vision.PageTokens)
	viper.SetDefault("vision.image_tokens", def.Vision.ImageTokens)
	viper.SetDefault("render.dpi", def.Render.DPI)
	viper.SetDefault("encode.max_bytes", def.Encode.MaxBytes)
	viper.SetDefault("encode.quality_start", def.Encode.QualityStart)
	viper.SetDefault("encode.quality_step", def.Encode.QualityStep)
	viper.SetDefault("encode.quality_floor", def.Encode.QualityFloor)
	viper.SetDefault("encode.quality_reset", def.Encode.QualityReset)
	viper.SetDefault("encode.min_edge_px", def.Encode.MinEdgePx)
	viper.SetDefault("context.before_chars", def.Context.BeforeChars)
	viper.SetDefault("context.after_chars", def.Context.AfterChars)
	viper.SetDefault("context.max_chars", def.Context.MaxChars)
	viper.SetDefault("workers", def.Workers)
	viper.SetDefault("on_error", string(def.OnError))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles and validates the run configuration from viper,
// secrets, and the shared command-line overrides.
func pipelineConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.PipelineConfig{
		Vision: types.VisionConfig{
			Endpoint:    viper.GetString("vision.endpoint"),
			Deployment:  viper.GetString("vision.deployment"),
			APIVersion:  viper.GetString("vision.api_version"),
			APIKey:      secretDefault("openai-api-key", viper.GetString("vision.api_key")),
			MaxRetries:  viper.GetInt("vision.max_retries"),
			PageTokens:  viper.GetInt("vision.page_tokens"),
			ImageTokens: viper.GetInt("vision.image_tokens"),
		},
		Render: types.RenderConfig{DPI: viper.GetInt("render.dpi")},
		Encode: types.EncodeConfig{
			MaxBytes:     viper.GetInt("encode.max_bytes"),
			QualityStart: viper.GetInt("encode.quality_start"),
			QualityStep:  viper.GetInt("encode.quality_step"),
			QualityFloor: viper.GetInt("encode.quality_floor"),
			QualityReset: viper.GetInt("encode.quality_reset"),
			MinEdgePx:    viper.GetInt("encode.min_edge_px"),
		},
		Context: types.ContextConfig{
			BeforeChars: viper.GetInt("context.before_chars"),
			AfterChars:  viper.GetInt("context.after_chars"),
			MaxChars:    viper.GetInt("context.max_chars"),
		},
		Workers: viper.GetInt("workers"),
		OnError: types.FailurePolicy(viper.GetString("on_error")),
	}

	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		cfg.Workers = n
	}
	if p, _ := cmd.Flags().GetString("on-error"); p != "" {
		cfg.OnError = types.FailurePolicy(p)
	}

	if err := cfg.Validate(); err != nil {
		return types.PipelineConfig{}, err
	}
	return cfg, nil
}

// writeReport marshals the run report to YAML at path.
func writeReport(path string, report types.RunReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
