package main

import "structura/cmd/structura/cmd"

func main() {
	cmd.Execute()
}
