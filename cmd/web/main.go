package main

import "github.com/Prathmesh125/reviewsystem/internal/app"

func main() {
	app.Run()
}
