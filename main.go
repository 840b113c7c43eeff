package main

import "kscan/cmd"

func main() {
	cmd.Execute()
}
