package main

import "github.com/jsphweid/practice/cmd"

func main() {
	cmd.Execute()
}
