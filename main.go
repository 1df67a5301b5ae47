package main

import (
	"log"
	"os"

	"Kasir/CronJobs"
	"Kasir/FiberConfig"
	"Kasir/Models"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	dbPath := os.Getenv("KASIR_DB_PATH")
	if dbPath == "" {
		dbPath = "database.db"
	}
	if err := Models.Connect(dbPath); err != nil {
		log.Fatal("Failed to connect to store:", err)
	}

	scheduler := CronJobs.NewBackupScheduler(Models.DB)
	if err := scheduler.Start(); err != nil {
		log.Println("Backup scheduler failed to start:", err)
	}
	defer scheduler.Stop()

	addr := os.Getenv("KASIR_LISTEN_ADDR")
	if addr == "" {
		addr = ":3001"
	}

	app := FiberConfig.NewApp(Models.DB)
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}
