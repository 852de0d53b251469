package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/PBL-Kelompok-3/newsalyze/internal/api"
	"github.com/PBL-Kelompok-3/newsalyze/internal/config"
	"github.com/PBL-Kelompok-3/newsalyze/internal/preview"
	"github.com/PBL-Kelompok-3/newsalyze/internal/recommend"
	"github.com/PBL-Kelompok-3/newsalyze/internal/service"
	"github.com/PBL-Kelompok-3/newsalyze/internal/store"
	"github.com/PBL-Kelompok-3/newsalyze/internal/summarize"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DB.DSN())
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	// simple ping + wait (db might be starting in docker)
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		log.Printf("waiting for db: attempt %d, err: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("could not connect to db: %v", err)
	}

	if err := store.RunMigrations(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warning: redis ping failed: %v", err)
	}

	repo := store.NewPgStore(db)

	summarizer := summarize.NewClient(cfg.Summarize.BaseURL,
		summarize.WithTimeout(time.Duration(cfg.Summarize.TimeoutSecs)*time.Second))
	recommender := recommend.NewClient(cfg.Recommend.BaseURL,
		recommend.WithTimeout(time.Duration(cfg.Recommend.TimeoutSecs)*time.Second))
	previewer := preview.NewClient(cfg.Preview.BaseURL,
		preview.WithTimeout(time.Duration(cfg.Preview.TimeoutSecs)*time.Second),
		preview.WithPlaceholder(cfg.Preview.Placeholder))

	svc := service.NewService(repo, rdb, summarizer, recommender, previewer, cfg.Recommend, cfg.ShareBaseURL)
	handler := api.NewHandler(svc)

	router := gin.Default()
	api.RegisterRoutes(router, handler)

	log.Printf("listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
