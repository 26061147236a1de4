package main

import "github.com/crossforge/mason/cmd/mason/internal"

func main() {
	internal.Execute()
}
