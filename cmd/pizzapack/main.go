package main

import "github.com/aalvaropc/pizzapack/internal/cli"

func main() {
	cli.Execute()
}
