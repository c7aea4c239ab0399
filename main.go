package main

import "aerial-to-topo/cmd"

func main() {
	cmd.Execute()
}
