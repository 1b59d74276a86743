package main

import "github.com/YuminosukeSato/logitlab/cmd/logitlab/cmd"

func main() {
	cmd.Execute()
}
