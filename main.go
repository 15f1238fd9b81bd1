package main

import "github.com/CristiGvl/picoDiskMon/cmd"

func main() {
	cmd.Execute()
}
