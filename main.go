package main

import "pathprobe/internal/cli"

func main() {
	cli.Execute()
}
