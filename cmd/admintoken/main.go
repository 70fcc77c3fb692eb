// Command admintoken выпускает JWT администратора для маршрутов /api/admin.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	login := flag.String("login", "admin", "логин сотрудника")
	ttl := flag.Duration("ttl", 24*time.Hour, "время жизни токена")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("WARNING: JWT_SECRET is not set, signing with the default secret")
		secret = config.DefaultJWTSecret
	}

	token, err := auth.GenerateToken(*login, auth.RoleAdmin, secret, *ttl)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	fmt.Println(token)
}
