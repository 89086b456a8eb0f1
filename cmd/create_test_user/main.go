package main

import (
	"context"
	"log"
	"os"

	"clicker_webapp/internal/catalog"
	"clicker_webapp/internal/db"
	"clicker_webapp/internal/repository"
	"clicker_webapp/internal/service"
)

func main() {
	// expects DATABASE_URL env var
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	store := catalog.NewStore(
		repository.NewLevelRepository(pool),
		repository.NewCharacterRepository(pool),
		repository.NewBoosterRepository(pool),
		repository.NewRewardRepository(pool),
		repository.NewWheelRepository(pool),
		repository.NewSettingsRepository(pool),
	)

	users := service.NewUserService(pool, store)
	ctx := context.Background()

	username := "testuser"
	u, err := users.GetOrCreate(ctx, service.AuthInput{
		TgID:      1234567890,
		FirstName: "Tester",
		Username:  &username,
	})
	if err != nil {
		log.Fatalf("create user failed: %v", err)
	}
	log.Printf("user id=%d tg_id=%d balance=%d energy=%d/%d level=%d\n",
		u.ID, u.TgID, u.Balance, u.Energy, u.EnergyLimit, u.Level.Level)

	// initialize JWT and print token
	service.InitJWT()
	token, err := service.GenerateJWT(u.TgID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}
	log.Printf("token=%s\n", token)
}
