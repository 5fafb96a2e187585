package main

import (
	"encoding/json"
	"io"

	"imgbench/internal/core/domain"

	"github.com/spf13/cobra"
)

type planFlags struct {
	source  string
	target  string
	mode    string
	anchor  string
	kernel  string
	bgColor string
	bgAlpha string
}

var planOpts planFlags

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "print the resize plan for a source and target size as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPlan(cmd.OutOrStdout(), planOpts)
	},
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planOpts.source, "source", "", "source size as WxH")
	f.StringVar(&planOpts.target, "target", "800x600", "target canvas size as WxH")
	f.StringVar(&planOpts.mode, "mode", string(domain.Fit), "fit, fill or stretch")
	f.StringVar(&planOpts.anchor, "anchor", string(domain.Center), "center, top, bottom, left or right")
	f.StringVar(&planOpts.kernel, "kernel", string(domain.Hanning), "resampling kernel")
	f.StringVar(&planOpts.bgColor, "bg-color", "white", "padding color")
	f.StringVar(&planOpts.bgAlpha, "bg-alpha", "255", "padding alpha 0-255")
	_ = planCmd.MarkFlagRequired("source")
}

func runPlan(w io.Writer, opts planFlags) error {
	src, err := domain.ParseDimensions(opts.source)
	if err != nil {
		return err
	}
	dst, err := domain.ParseDimensions(opts.target)
	if err != nil {
		return err
	}
	mode, err := domain.ParseResizeMode(opts.mode)
	if err != nil {
		return err
	}
	anchor, err := domain.ParseAnchor(opts.anchor)
	if err != nil {
		return err
	}
	kernel, err := domain.ParseKernel(opts.kernel)
	if err != nil {
		return err
	}
	bg, err := domain.ParseBackground(opts.bgColor, opts.bgAlpha)
	if err != nil {
		return err
	}

	plan, err := domain.ComputePlan(src, dst, mode, anchor, bg, kernel)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
