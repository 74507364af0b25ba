package main

import (
	"fmt"
	"os"

	"github.com/debemdeboas/session-editor/internal/config"
)

func main() {
	output, err := config.ExampleYAML()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	// Write to file or stdout
	outputFile := config.ExampleConfigFile
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(string(output))
		return
	}
	if err := os.WriteFile(outputFile, output, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
