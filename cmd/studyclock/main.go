package main

import "studyclock/internal/cli"

func main() {
	cli.Execute()
}
