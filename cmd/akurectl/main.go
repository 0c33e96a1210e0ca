package main

import "github.com/samirrijal/akureroute/cmd/akurectl/command"

func main() {
	command.Execute()
}
