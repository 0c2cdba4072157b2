package main

import "github.com/pders01/domainsnap/cmd"

func main() {
	cmd.Execute()
}
