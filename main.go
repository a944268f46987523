package main

import "depletions/cmd"

func main() {
	cmd.Execute()
}
