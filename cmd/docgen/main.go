package main

import "docgen/internal/cli"

func main() {
	cli.Execute()
}
