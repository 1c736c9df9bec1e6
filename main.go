package main

import "github.com/flatvol/go-flatvol/cmd"

func main() {
	cmd.Execute()
}
