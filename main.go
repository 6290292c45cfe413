package main

import "github.com/chriserin/doctag/cmd"

func main() {
	cmd.Execute()
}
