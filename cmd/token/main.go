package main

import (
	"fmt"
	"log"

	flag "github.com/spf13/pflag"

	"quote_backend/internal/platform/config"
	jwtmw "quote_backend/internal/platform/jwt"
)

func main() {
	subject := flag.String("subject", "cli", "token subject (API client name)")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to jwt.ttl from config")
	cfgPath := flag.String("config", "", "optional config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("QUOTE_JWT_SECRET is not set")
	}

	exp := *ttl
	if exp <= 0 {
		exp = cfg.JWT.TTL
	}

	token, err := jwtmw.NewGenerator(cfg.JWT.Secret, exp).
		GenerateToken(*subject, []string{jwtmw.ScopeCandlesticksRead})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
