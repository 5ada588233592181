package main

import "inventory-bridge/cmd"

func main() {
	cmd.Execute()
}
