// @title           TravelBuddy API
// @version         1.0
// @description     REST backend for the TravelBuddy companion-matching service.
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /

package main

import (
	"travelbuddy_backend/internal/app"

	_ "travelbuddy_backend/docs"
)

func main() {
	app.Run()
}
