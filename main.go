package main

import "github.com/kozaktomas/style-genie/cmd"

func main() {
	cmd.Execute()
}
