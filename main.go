package main

import "github.com/agentic-research/modinstall/cmd"

func main() {
	cmd.Execute()
}
