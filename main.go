package main

import (
	"jamjar/cmd"
)

func main() {
	cmd.Execute()
}
