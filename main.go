package main

import "streetview-download/cmd"

func main() {
	cmd.Execute()
}
