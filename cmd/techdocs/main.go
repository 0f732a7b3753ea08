package main

import "techdocs/internal/cli"

func main() {
	cli.Execute()
}
