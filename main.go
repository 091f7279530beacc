package main

import (
	"dagplanner-api/core/logger"
	"dagplanner-api/core/server"
)

// @title DagPlanner API
// @version 1.0
// @description API backend voor DagPlanner - dagplanning met tijdblokken
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@dagplanner.nl

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
	}
}
