package main

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/lukasbauer/echojournal/internal/app"
	"github.com/lukasbauer/echojournal/internal/classify"
	"github.com/lukasbauer/echojournal/internal/mood"
	"github.com/spf13/cobra"
)

type classifyResult struct {
	Result    classify.Output `json:"result"`
	Rendering mood.Rendering  `json:"rendering"`
}

func newClassifyCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "classify [text ...]",
		Short: "Classify a transcript with the configured model",
		Long:  "Classify scores the text given as arguments, or read from stdin, and prints\nthe ranked moods, the sentiment and the rendering.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(b)
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return errors.New("nothing to classify")
			}

			logger := newLogger(cfg)
			logger.SetOutput(cmd.ErrOrStderr())
			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out, err := a.Classify(ctx, text)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), output, classifyResult{
				Result:    out,
				Rendering: mood.Render(out.All, a.RenderOptions()),
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}
