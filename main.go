package main

import "github.com/tracelake/evmetl/cmd"

func main() {
	cmd.Execute()
}
