package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"diagramsmith/internal/export"
	"diagramsmith/internal/mermaid"
	"diagramsmith/internal/sanitize"
	"diagramsmith/internal/source"
	"diagramsmith/internal/validation"
)

var (
	exportOutput string
	exportLocal  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <input-file>",
	Short: "Export diagram text to a PNG image",
	Long: `Export sends the cleaned diagram text to the remote conversion
service and writes the returned PNG. With --local the image is drawn by
the built-in rasterizer instead, with simplified shapes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validation.ValidateInputPath(args[0], false); err != nil {
			return err
		}
		if err := validation.ValidateOutputPath(exportOutput); err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		text := sanitize.Sanitize(source.ExtractDiagramText(string(data))).Text

		var imageBytes []byte
		if exportLocal {
			engine := mermaid.NewEngine()
			if err := engine.Initialize(mermaid.Config{
				Theme:     cfg.Renderer.Theme,
				Direction: cfg.Renderer.Direction,
			}); err != nil {
				return err
			}
			imageBytes, err = engine.RenderPNG(cmd.Context(), uuid.NewString(), text)
			if err != nil {
				return err
			}
		} else {
			bridge := export.NewBridge(cfg.Export.Endpoint, cfg.ExportTimeout())
			res := bridge.Export(cmd.Context(), text)
			if !res.Success {
				logger.Error("export failed", zap.String("error", res.ErrorMessage))
				return fmt.Errorf("export failed: %s", res.ErrorMessage)
			}
			imageBytes = res.ImageBytes
		}

		if err := os.WriteFile(exportOutput, imageBytes, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("Exported diagram to %s\n", exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "diagram.png", "output PNG path")
	exportCmd.Flags().BoolVar(&exportLocal, "local", false, "rasterize with the built-in renderer instead of the conversion service")
}
