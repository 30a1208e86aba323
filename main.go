package main

import (
	"os"

	"github.com/GoShopAdmin/GoShopAdmin/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
