package main

import "github.com/abdout/souq/cmd"

func main() {
	cmd.Execute()
}
