package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/felicity-events/eventops-api/cmd/app"
)

// @contact.name   API Support
// @contact.email  support@felicity-events.dev
//
// @license.name  MIT
//
// @securityDefinitions.apikey BearerToken
// @in header
// @name Authorization
// @description Bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
