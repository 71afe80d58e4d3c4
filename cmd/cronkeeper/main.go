package main

import "cronkeeper/internal/cli"

func main() {
	cli.Execute()
}
