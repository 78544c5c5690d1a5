package main

import "github.com/armoucar-neon/dspy-memory-leak-repro/cmd"

func main() {
	cmd.Execute()
}
