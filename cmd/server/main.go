package main

import (
	"log"

	"github.com/NikitaPolechshuk/django-sprint4/internal/config"
	"github.com/NikitaPolechshuk/django-sprint4/internal/db"
	"github.com/NikitaPolechshuk/django-sprint4/internal/handler"
	"github.com/NikitaPolechshuk/django-sprint4/internal/router"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	api := handler.NewAPI(db.DB, cfg.UploadDir, cfg.UploadURLPath)
	r := router.Setup(api, cfg)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
