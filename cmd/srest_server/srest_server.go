package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/jinzhu/configor"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/xdbsoft/srest"
)

func loadConfig(path string) (srest.Config, error) {

	var cfg srest.Config
	if err := configor.Load(&cfg, path); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func newLogger(level string) (*logrus.Logger, error) {

	log := logrus.New()
	log.Out = os.Stdout
	log.Formatter = new(prefixed.TextFormatter)

	l, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log.Level = l

	return log, nil
}

var configPath = flag.String("config", "srest_server.toml", "path to the configuration file")
var listenAddr = flag.String("addr", ":9889", "address and port to listen on")

func main() {

	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	srestHandler, err := srest.Server(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("unable to start server")
	}

	h := handlers.LoggingHandler(log.Writer(), srestHandler)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(log))(h)

	s := &http.Server{
		Addr:           *listenAddr,
		Handler:        h,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	log.WithField("addr", *listenAddr).Info("listening")
	log.Fatal(s.ListenAndServe())
}
