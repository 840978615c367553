package main

import (
	"log"
)

// @title           Salons API
// @version         1.0
// @description     Chat rooms, channels, messages and room moderation.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := Execute(); err != nil {
		log.Fatal(err)
	}
}
