package main

import "github.com/andresmejia3/imglabel/cmd"

func main() {
	cmd.Execute()
}
