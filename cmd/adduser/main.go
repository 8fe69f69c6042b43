// Command adduser creates an API user with an argon2id password hash.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/technosupport/ts-dvr-gateway/internal/auth"
	"github.com/technosupport/ts-dvr-gateway/internal/config"
	"github.com/technosupport/ts-dvr-gateway/internal/data"
	"github.com/technosupport/ts-dvr-gateway/internal/platform/paths"
)

func main() {
	username := flag.String("username", "", "Username to create")
	password := flag.String("password", "", "Password (or set ADDUSER_PASSWORD)")
	flag.Parse()

	if *username == "" {
		log.Fatal("Usage: adduser -username <name> -password <password>")
	}
	if *password == "" {
		*password = os.Getenv("ADDUSER_PASSWORD")
	}
	if *password == "" {
		log.Fatal("A password is required (flag or ADDUSER_PASSWORD)")
	}

	cfg, err := config.Load(paths.ResolveConfigPath(os.Getenv("GATEWAY_CONFIG")))
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}

	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		log.Fatalf("DB open error: %v", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Hash error: %v", err)
	}

	user := &data.User{Username: *username, PasswordHash: hash}
	if err := (data.UserModel{DB: db}).Create(context.Background(), user); err != nil {
		log.Fatalf("Create user failed: %v", err)
	}

	fmt.Printf("Created user %s (%s)\n", user.Username, user.ID)
}
