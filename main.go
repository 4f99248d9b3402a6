package main

import "exusiai.dev/dashsync/cmd/app"

func main() {
	app.Run()
}
