package main

import "github.com/jvs-project/reportstore/internal/cli"

func main() {
	cli.Execute()
}
