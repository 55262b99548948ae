package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"diagramsmith/internal/mermaid"
	"diagramsmith/internal/render"
	"diagramsmith/internal/source"
	"diagramsmith/internal/validation"
)

var (
	renderOutput string
	renderKind   string
)

var renderCmd = &cobra.Command{
	Use:   "render <input-file>",
	Short: "Render diagram text to SVG, repairing it if needed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validation.ValidateInputPath(args[0], false); err != nil {
			return err
		}
		if err := validation.ValidateOutputPath(renderOutput); err != nil {
			return err
		}
		kind, err := parseKind(renderKind)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		engine := mermaid.NewEngine()
		if err := engine.Initialize(mermaid.Config{
			Theme:     cfg.Renderer.Theme,
			Direction: cfg.Renderer.Direction,
		}); err != nil {
			return err
		}

		coord := render.New(engine, logger, render.WithDebounce(cfg.Debounce()))
		defer coord.Close()

		src := source.New(source.ExtractDiagramText(string(data)), kind)
		art := coord.Render(cmd.Context(), src)

		if art.Kind == render.Diagnostic {
			fmt.Fprintln(os.Stderr, art.DisplayText)
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, art.OriginalText)
			return fmt.Errorf("diagram could not be rendered")
		}

		if err := os.WriteFile(renderOutput, []byte(art.Markup), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if art.Degraded() {
			logger.Warn("rendered a simplified diagram",
				zap.Int("tier", art.Tier),
				zap.String("output", renderOutput))
			fmt.Printf("Rendered simplified diagram to %s\n", renderOutput)
			return nil
		}
		fmt.Printf("Rendered diagram to %s\n", renderOutput)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "diagram.svg", "output SVG path")
	renderCmd.Flags().StringVar(&renderKind, "kind", "hld", "diagram kind: hld or lld")
}

func parseKind(s string) (source.DocumentKind, error) {
	switch s {
	case "hld":
		return source.KindHighLevel, nil
	case "lld":
		return source.KindLowLevel, nil
	default:
		return 0, fmt.Errorf("unknown diagram kind %q, expected hld or lld", s)
	}
}
