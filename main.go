package main

import "github.com/pulseone/pulse-admin/cmd"

func main() {
	cmd.Execute()
}
