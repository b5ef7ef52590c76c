// Mints an operator token for the /admin endpoints.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"cardmirror/internal/auth"
	"cardmirror/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	operator := flag.String("operator", "ops", "operator name recorded in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token validity")
	flag.Parse()

	cfg := utils.LoadServerConfig()

	tokens := auth.TokenService{
		Secret:   []byte(cfg.AdminSecret),
		Issuer:   cfg.AdminIssuer,
		Duration: *ttl,
	}

	token, exp, err := tokens.Sign(*operator)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}

	fmt.Println(token)
	log.Printf("token for %q valid until %s", *operator, exp.Format(time.RFC3339))
}
