package main

import "github.com/mickdekkers/skyrim-alchemy-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
