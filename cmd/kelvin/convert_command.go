package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"kelvin/internal/config"
	"kelvin/internal/converter"
	"kelvin/internal/logging"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var inputFlag string
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert every thermal capture in the input directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(ctx, cmd, inputFlag, outputFlag)
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Input directory override")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory override")
	return cmd
}

func runConvert(ctx *commandContext, cmd *cobra.Command, inputFlag, outputFlag string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if err := applyPathOverrides(cfg, inputFlag, outputFlag); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	batch := converter.New(cfg, logger)
	summary, err := batch.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(summary.Results) == 0 {
		fmt.Fprintf(out, "No thermal captures (*%s) found in %s\n", converter.InputSuffix, cfg.Paths.InputDir)
		return nil
	}
	fmt.Fprintln(out, renderSummaryTable(summary))
	fmt.Fprintf(out, "%d converted, %d failed; %d rasters moved to %s\n",
		summary.Converted, summary.Failed, summary.MovedRasters, cfg.Paths.OutputDir)
	return nil
}

func applyPathOverrides(cfg *config.Config, inputFlag, outputFlag string) error {
	if inputFlag != "" {
		expanded, err := config.ExpandPath(inputFlag)
		if err != nil {
			return fmt.Errorf("resolve input dir: %w", err)
		}
		cfg.Paths.InputDir = expanded
	}
	if outputFlag != "" {
		expanded, err := config.ExpandPath(outputFlag)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if cfg.Paths.InputDir == cfg.Paths.OutputDir {
		return fmt.Errorf("input and output directories must differ, both are %s", cfg.Paths.InputDir)
	}
	return nil
}

func renderSummaryTable(summary *converter.Summary) string {
	headers := []string{"File", "Status", "Size", "Tags", "Error"}
	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		size := ""
		if result.Width > 0 {
			size = strconv.Itoa(result.Width) + "x" + strconv.Itoa(result.Height)
		}
		tags := "-"
		if result.Status == converter.StatusConverted {
			if result.MetadataCopied {
				tags = "copied"
			} else {
				tags = "missing"
			}
		}
		errText := ""
		if result.Err != nil {
			errText = result.Err.Error()
		}
		rows = append(rows, []string{result.File, string(result.Status), size, tags, errText})
	}
	return renderTable(headers, rows, 2) // right-align Size
}
