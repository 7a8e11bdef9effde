package main

import (
	"flag"
	"fmt"
	"log"

	"community-tickets/internal/utils"
)

// Prints the Argon2id hash for an admin API key, for use as
// ADMIN_KEY_HASH in the server environment.
func main() {
	key := flag.String("key", "", "admin API key to hash")
	flag.Parse()

	if *key == "" {
		log.Fatal("usage: hash-admin-key -key <admin-api-key>")
	}

	hash, err := utils.HashCredential(*key)
	if err != nil {
		log.Fatalf("Failed to hash key: %v", err)
	}

	fmt.Println(hash)
}
