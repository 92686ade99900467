package main

import "github.com/encodeous/lsd/cmd"

func main() {
	cmd.Execute()
}
