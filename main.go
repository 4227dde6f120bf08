package main

import "github.com/hollowbrook/cashcast/cmd"

func main() {
	cmd.Execute()
}
