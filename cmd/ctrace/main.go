package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"ctrace/pkg/driver"
)

const demoSource = `#include <stdio.h>

int main() {
    int x = 10;
    int *ptr = &x;
    printf("x = %d\n", x);
    return 0;
}
`

func main() {
	jsonOut := flag.Bool("json", false, "emit the full result as JSON")
	flag.Parse()

	src := demoSource
	if flag.NArg() > 0 {
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	session := driver.NewSession()
	result, err := session.Run(src)

	for _, d := range result.Diags {
		fmt.Fprintf(os.Stderr, "%s: %s\n", d.Severity, d.Message)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			fmt.Fprintln(os.Stderr, "encode error:", encErr)
			os.Exit(1)
		}
		if err != nil {
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Source:\n%s\n", src)

	fmt.Printf("Tokens (%d)\n", len(result.Tokens))
	for _, tok := range result.Tokens {
		fmt.Printf("  %3d:%-3d %-12s %s\n", tok.Line, tok.Column, tok.Kind, tok.Text)
	}
	fmt.Println()

	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	fmt.Println("AST")
	for _, d := range result.Program.Decls {
		fmt.Println(" ", d)
	}
	fmt.Println()

	fmt.Printf("Execution steps (%d)\n", len(result.Steps))
	for i, step := range result.Steps {
		fmt.Printf("  %2d [%-14s] line %-3d %s\n", i, step.Kind, step.SourceLine, step.Description)
		if step.Delta.Output != "" {
			fmt.Printf("       output: %q\n", step.Delta.Output)
		}
	}
	fmt.Println()

	if out := result.State.Console(); out != "" {
		fmt.Printf("Console\n%s", out)
	}
}
