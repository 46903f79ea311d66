package main

import "newsradar/internal/cli"

func main() {
	cli.Execute()
}
