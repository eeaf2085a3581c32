package main

import "WebShop_AI/client/gateway-cli/cmd"

func main() {
	cmd.Execute()
}
