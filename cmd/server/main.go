package main

import (
	"log"
	"net/http"

	"aeriesbridge/internal/cache"
	"aeriesbridge/internal/config"
	"aeriesbridge/internal/db"
	"aeriesbridge/internal/handlers"
	"aeriesbridge/internal/router"
)

func main() {
	settings := config.Load()

	db.Init(settings.DatabaseURL)
	handlers.Init(cache.New(settings.RedisAddr, settings.RedisPassword))

	r := router.RegisterRouter()
	addr := ":" + settings.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
