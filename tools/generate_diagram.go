//go:build ignore

// Renders a deliberately broken sample reply through the full recovery
// pipeline. Handy for eyeballing tier behavior without wiring up an
// agent:
//
//	go run tools/generate_diagram.go
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"diagramsmith/internal/mermaid"
	"diagramsmith/internal/render"
	"diagramsmith/internal/source"
)

const sampleReply = "```mermaid\n" +
	"flowchart TD\n" +
	"    A[ASP Pages <br> (e.g., Rlv_ISLLPOL_2] --> B[/api/session]\n" +
	"    B --> C[Business Logic (v2)]\n" +
	"    C --> D[(Database)]\n" +
	"```"

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	engine := mermaid.NewEngine()
	coord := render.New(engine, logger)
	defer coord.Close()

	src := source.New(source.ExtractDiagramText(sampleReply), source.KindHighLevel)
	art := coord.Render(context.Background(), src)

	if art.Kind == render.Diagnostic {
		fmt.Println(art.DisplayText)
		fmt.Println(art.OriginalText)
		os.Exit(1)
	}

	if err := os.WriteFile("sample.svg", []byte(art.Markup), 0644); err != nil {
		fmt.Printf("Error writing output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rendered tier %d diagram to sample.svg\n", art.Tier)
}
