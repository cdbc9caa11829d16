package main

import (
	"flag"
	"os"

	"github.com/tech-arch1tect/invitegate"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"go.uber.org/zap"
)

func main() {
	certFile := flag.String("tls-cert", "", "PEM certificate for HTTPS")
	keyFile := flag.String("tls-key", "", "PEM private key for HTTPS")
	docs := flag.Bool("docs", true, "serve /openapi.json and /openapi.yaml")
	flag.Parse()

	opts := []invitegate.Option{
		invitegate.WithInvites(),
		invitegate.WithAudit(),
		invitegate.WithMail(),
	}
	if *docs {
		opts = append(opts, invitegate.WithAPIDocs())
	}
	if *certFile != "" || *keyFile != "" {
		opts = append(opts, invitegate.WithTLS(*certFile, *keyFile))
	}

	app, err := invitegate.New(opts...)
	if err != nil {
		logger := bootLogger()
		logger.Error("failed to build application", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	app.Run()
}

// bootLogger logs failures that happen before the configured logger exists. It reads
// the LOG_* variables directly because loading the config may be what failed.
func bootLogger() *logging.Service {
	logger, err := logging.NewService(logging.Config{
		Level:  logging.LogLevel(os.Getenv("LOG_LEVEL")),
		Format: os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return logging.NewFromZap(zap.NewExample())
	}
	return logger
}
