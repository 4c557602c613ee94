package main

import "github.com/oshokin/room-control/cmd/alarm-console/cmd"

func main() {
	cmd.Execute()
}
