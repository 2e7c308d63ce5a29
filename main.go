package main

import "github.com/iksnae/ideasurge/cmd"

func main() {
	cmd.Execute()
}
