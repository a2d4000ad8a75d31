package main

import "github.com/mohamedahmedessam757/futurethinking-backend/cmd"

func main() {
	cmd.Execute()
}
