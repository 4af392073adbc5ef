package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/aacsoares/product-damage-detection-ui/internal/config"
	"github.com/aacsoares/product-damage-detection-ui/internal/hub"
	"github.com/aacsoares/product-damage-detection-ui/internal/relay"
)

func main() {
	cfg := config.Load()

	h := hub.New()
	go h.Run()

	handler := relay.NewHandler(cfg.BackendURL, nil, h)

	e := gin.Default()
	e.MaxMultipartMemory = cfg.UploadLimitMB << 20

	api := e.Group("/api")
	api.POST("/predict", handler.Predict)
	api.POST("/annotate", handler.Annotate)
	api.GET("/view", handler.View)
	e.GET("/healthz", handler.Health)

	log.Info().Int("port", cfg.Port).Str("backend", cfg.BackendURL).Msg("starting relay server")
	if err := e.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatal().Err(err).Msg("run server")
	}
}
