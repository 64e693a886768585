package main

import "github.com/markany/safepc-insider/cmd"

func main() {
	cmd.Execute()
}
