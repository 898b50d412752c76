package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lukasbauer/echojournal/internal/app"
	"github.com/lukasbauer/echojournal/internal/mood"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var (
		output    string
		threshold float64
		topK      int
		direction string
	)
	cmd := &cobra.Command{
		Use:   "render [label=score ...]",
		Short: "Blend and render a ranked mood list",
		Long: "Render prints the blended color, fill and foreground for a mood list.\n" +
			"Moods come from label=score arguments, or as a JSON array of\n" +
			"{\"label\",\"score\"} objects on stdin when no arguments are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			var moods []mood.Mood
			if len(args) > 0 {
				moods, err = parseMoodArgs(args)
			} else {
				moods, err = readMoods(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			opts := mood.Options{
				DominanceThreshold: cfg.DominanceThreshold,
				TopK:               cfg.BlendTopK,
				Direction:          cfg.GradientDirection,
			}
			if threshold > 0 {
				opts.DominanceThreshold = threshold
			}
			if topK > 0 {
				opts.TopK = topK
			}
			if direction != "" {
				opts.Direction = direction
			}
			return printResult(cmd.OutOrStdout(), output, mood.Render(moods, opts))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "dominance threshold override")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of moods to blend")
	cmd.Flags().StringVar(&direction, "direction", "", "CSS gradient direction")
	return cmd
}

// parseMoodArgs reads "label=score" pairs in ranked order.
func parseMoodArgs(args []string) ([]mood.Mood, error) {
	moods := make([]mood.Mood, 0, len(args))
	for _, arg := range args {
		label, raw, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("invalid mood %q, want label=score", arg)
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score in %q: %w", arg, err)
		}
		moods = append(moods, mood.Mood{Label: strings.TrimSpace(label), Score: score})
	}
	return moods, nil
}

func readMoods(r io.Reader) ([]mood.Mood, error) {
	var moods []mood.Mood
	if err := json.NewDecoder(r).Decode(&moods); err != nil {
		return nil, fmt.Errorf("decode moods from stdin: %w", err)
	}
	return moods, nil
}
