package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"diagramsmith/internal/agent"
	"diagramsmith/internal/mermaid"
	"diagramsmith/internal/render"
	"diagramsmith/internal/validation"
)

var (
	generateOutput string
	generateKind   string
)

var generateCmd = &cobra.Command{
	Use:   "generate <description-file>",
	Short: "Generate a diagram from a project description and render it",
	Long: `Generate asks the configured chat model for a flowchart of the
described system, then runs the reply through the recovery pipeline
and writes the rendered SVG. The API key comes from the agent block of
the configuration file or the OPENAI_API_KEY environment variable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validation.ValidateInputPath(args[0], false); err != nil {
			return err
		}
		if err := validation.ValidateOutputPath(generateOutput); err != nil {
			return err
		}
		kind, err := parseKind(generateKind)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read description: %w", err)
		}
		description := strings.TrimSpace(string(data))
		if description == "" {
			return fmt.Errorf("description file is empty")
		}

		apiKey := cfg.Agent.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		diagrammer, err := agent.New(apiKey, cfg.Agent.BaseURL, cfg.Agent.Model, logger)
		if err != nil {
			return err
		}

		src, err := diagrammer.Generate(cmd.Context(), kind, description)
		if err != nil {
			return err
		}
		logger.Info("received diagram text",
			zap.String("source_id", src.ID),
			zap.String("kind", src.Kind.String()))

		engine := mermaid.NewEngine()
		if err := engine.Initialize(mermaid.Config{
			Theme:     cfg.Renderer.Theme,
			Direction: cfg.Renderer.Direction,
		}); err != nil {
			return err
		}
		coord := render.New(engine, logger, render.WithDebounce(cfg.Debounce()))
		defer coord.Close()

		art := coord.Render(cmd.Context(), src)
		if art.Kind == render.Diagnostic {
			fmt.Fprintln(os.Stderr, art.DisplayText)
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, art.OriginalText)
			return fmt.Errorf("generated diagram could not be rendered")
		}

		if err := os.WriteFile(generateOutput, []byte(art.Markup), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if art.Degraded() {
			fmt.Printf("Rendered simplified diagram to %s\n", generateOutput)
			return nil
		}
		fmt.Printf("Rendered diagram to %s\n", generateOutput)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "diagram.svg", "output SVG path")
	generateCmd.Flags().StringVar(&generateKind, "kind", "hld", "diagram kind: hld or lld")
}
