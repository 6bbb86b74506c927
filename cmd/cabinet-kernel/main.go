package main

import "github.com/cabinet-platform/kernel/cmd/cabinet-kernel/cmd"

func main() {
	cmd.Execute()
}
