package main

import (
	"github.com/dataq-tools/windaq-data-service/internal/app"
)

func main() {
	app.Run()
}
