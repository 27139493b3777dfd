// +build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type NearbyRecalcEvent struct {
	EventID string `json:"event_id"`
	SiteID  int64  `json:"site_id"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	siteID := flag.Int64("site", 1, "Site ID to recalculate")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := NearbyRecalcEvent{
		EventID: uuid.NewString(),
		SiteID:  *siteID,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "stream:sites:nearby",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("✅ Event published successfully!\n")
	fmt.Printf("   Stream: stream:sites:nearby\n")
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Event ID: %s\n", event.EventID)
	fmt.Printf("   Site ID: %d\n", event.SiteID)

	// Даём воркеру время забрать сообщение и проверяем, что оно подтверждено
	fmt.Printf("\n⏳ Waiting for the worker to consume the event...\n")

	timeout := time.After(30 * time.Second)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("❌ Timeout: event still pending, is the worker running?")
			return
		case <-ticker.C:
			pending, err := client.XPending(ctx, "stream:sites:nearby", "site-nearby-workers").Result()
			if err != nil && err != redis.Nil {
				continue
			}
			if pending == nil || pending.Count == 0 {
				fmt.Printf("✅ Event consumed and acknowledged!\n")
				return
			}
		}
	}
}
