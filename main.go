package main

import "github.com/chriserin/stepcov/cmd"

func main() {
	cmd.Execute()
}
