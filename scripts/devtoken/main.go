package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bancharampur/infogate/internal/auth"
)

func main() {
	principal := flag.String("principal", "admin-1", "principal id carried in the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}
	token, err := auth.NewJWTVerifier([]byte(secret)).Generate(*principal, *ttl)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Println(token)
}
