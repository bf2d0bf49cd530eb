package main

import "github.com/sergev/flux2hfe/cmd"

func main() {
	cmd.Execute()
}
