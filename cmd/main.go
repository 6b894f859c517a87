package main

import (
	"gw-records/internal/app"
	"log"
)

// @title           Records Ingest API
// @version         1.0
// @description     API для приема транзакционных записей с агрегацией и публикацией уведомлений

// @host      localhost:8080
// @BasePath  /api/v1
func main() {
	app, err := app.NewApp()
	if err != nil {
		log.Fatalf("Ошибка создания приложения: %v", err)
	}

	app.BuildRecordLayer()

	if err := app.Run(); err != nil {
		log.Fatalf("Ошибка при работе приложения: %v", err)
	}
}
