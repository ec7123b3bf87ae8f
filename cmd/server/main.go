package main

import (
	"net/http"

	"github.com/sashankbanda/Focusly/internal/config"
	"github.com/sashankbanda/Focusly/internal/logging"
	"github.com/sashankbanda/Focusly/internal/serverapp"
)

func main() {
	log := logging.Init("focusly-server")

	cfg, err := config.Load("focusly.yml")
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Logger: log,
	})
	if err != nil {
		log.WithError(err).Fatal("build server")
	}

	log.WithField("addr", cfg.Server.Addr).Info("listening")
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
