package main

import "github.com/racechain/racechain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
