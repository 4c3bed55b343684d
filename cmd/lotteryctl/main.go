package main

import "github.com/ArowuTest/raffle-backend/cmd/lotteryctl/cmd"

func main() {
	cmd.Execute()
}
