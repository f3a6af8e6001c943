package main

import "github.com/arcane-sim/arcaneviz/internal/cli"

func main() {
	cli.Execute()
}
