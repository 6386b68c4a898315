package main

import "github.com/lukman83/wbops/cmd"

func main() {
	cmd.Execute()
}
