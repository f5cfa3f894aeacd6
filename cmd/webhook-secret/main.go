package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ManuelReschke/PremiumHook/app/repository"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/billing"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/database"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/env"
	"github.com/ManuelReschke/PremiumHook/internal/pkg/security"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	env.SetupEnvFile()

	cipher, err := security.NewSettingsCipher(env.GetEnv("APP_KEY", ""))
	if err != nil {
		log.Fatalf("APP_KEY: %v", err)
	}

	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())
	store := billing.NewSecretStore(repository.GetGlobalFactory().GetSettingRepository(), cipher)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "set":
		if len(os.Args) < 3 {
			log.Fatalf("Please provide the secret")
		}
		if err := store.SetWebhookSecret(ctx, os.Args[2]); err != nil {
			log.Fatalf("Failed to store webhook secret: %v", err)
		}
		log.Println("Webhook secret stored")

	case "check":
		secret, err := store.WebhookSecret(ctx)
		if err != nil {
			log.Fatalf("Webhook secret unusable: %v", err)
		}
		log.Printf("Webhook secret is configured (%d characters)", len(secret))

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: webhook-secret [command]")
	fmt.Println("Commands:")
	fmt.Println("  set <secret> - encrypt and store the payment webhook secret")
	fmt.Println("  check        - verify that the stored secret can be decrypted")
}
