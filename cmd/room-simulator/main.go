package main

import "github.com/oshokin/room-control/cmd/room-simulator/cmd"

func main() {
	cmd.Execute()
}
