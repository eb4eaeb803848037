// meal-publisher pushes one meal-log row onto the live update channel.
// Useful for exercising the dashboard's push path locally:
//
//	meal-publisher -user 1 -name "Grilled Chicken" -calories 450 -protein 45
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"

	"nutridash/internal/amqp"
	"nutridash/internal/cli"
	"nutridash/internal/core"
	"nutridash/internal/log"
)

func main() {
	userID := flag.String("user", "", "user id the meal belongs to (required)")
	name := flag.String("name", "", "meal name")
	date := flag.String("date", "", "meal timestamp, RFC 3339-ish (default: now)")
	calories := flag.Float64("calories", 0, "calories")
	protein := flag.Float64("protein", 0, "protein grams")
	carbs := flag.Float64("carbs", 0, "carb grams")
	fat := flag.Float64("fat", 0, "fat grams")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentAMQP)
	cfg := cli.LoadAndValidateConfig(logger)

	if *userID == "" {
		logger.Error("Missing required -user flag")
		flag.Usage()
		os.Exit(2)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to publish")
		os.Exit(1)
	}

	when := *date
	if when == "" {
		when = time.Now().Format("2006-01-02T15:04:05")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	record := core.RawRecord{
		core.FieldID:       uuid.NewString(),
		core.FieldUserID:   *userID,
		core.FieldDate:     when,
		core.FieldName:     *name,
		core.FieldCalories: *calories,
		core.FieldProtein:  *protein,
		core.FieldCarbs:    *carbs,
		core.FieldFat:      *fat,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.PublishMealInserted(ctx, amqp.NewMealInsertedMessage(*userID, record)); err != nil {
		logger.Error("Publish failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Meal published",
		log.FieldUserID, *userID,
		log.FieldMealLabel, *name,
		log.FieldCalories, *calories)
}
