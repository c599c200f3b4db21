package main

import "github.com/spasuite/sms-inbound/cmd"

func main() {
	cmd.Execute()
}
