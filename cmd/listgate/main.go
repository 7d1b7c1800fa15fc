package main

import "github.com/mcoot/listgate/internal/cli"

func main() {
	cli.Execute()
}
