package main

import "maintenance-marketplace-api/app"

func main() {
	app.Run()
}
