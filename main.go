package main

import "sessiondeck/internal/cli"

func main() {
	cli.Execute()
}
