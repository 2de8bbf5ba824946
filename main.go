package main

import "social-network-client/cmd"

func main() {
	cmd.Run()
}
