package main

import "github.com/notargets/goferrox/cmd"

func main() {
	cmd.Execute()
}
