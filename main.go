package main

import "dating-clock-backend/cmd"

func main() {
	cmd.Run()
}
