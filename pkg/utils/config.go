package utils

import (
	"os"
	"strconv"
	"time"
)

type ServerConfig struct {
	Port            string
	UpstreamURL     string
	FetchTimeout    time.Duration
	ChunkSize       int
	RefreshInterval time.Duration
	AdminSecret     string
	AdminIssuer     string
}

const DefaultUpstreamURL = "https://db.ygoprodeck.com/api/v7/cardinfo.php"

func LoadServerConfig() ServerConfig {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	upstream := os.Getenv("CARDMIRROR_UPSTREAM_URL")
	if upstream == "" {
		upstream = DefaultUpstreamURL
	}

	secret := os.Getenv("CARDMIRROR_ADMIN_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("CARDMIRROR_ADMIN_ISSUER")
	if issuer == "" {
		issuer = "cardmirror"
	}

	return ServerConfig{
		Port:            port,
		UpstreamURL:     upstream,
		FetchTimeout:    envDuration("CARDMIRROR_FETCH_TIMEOUT", 30*time.Second),
		ChunkSize:       envInt("CARDMIRROR_CHUNK_SIZE", 100),
		RefreshInterval: envDuration("CARDMIRROR_REFRESH_INTERVAL", 0),
		AdminSecret:     secret,
		AdminIssuer:     issuer,
	}
}

func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
