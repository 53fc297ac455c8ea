package main

import "github.com/clipscout/clipscout/internal/cli"

func main() {
	cli.Main()
}
