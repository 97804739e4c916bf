package main

import "github.com/kozaktomas/faceclock/cmd"

func main() {
	cmd.Execute()
}
