package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/contractlens/ragcheck/internal/harness"
	"github.com/contractlens/ragcheck/internal/models"
)

type Consumer struct {
	client        *redis.Client
	stream        string
	groupID       string
	consumerName  string
	resultsStream string
	orchestrator  *harness.Orchestrator
	logger        *zerolog.Logger
}

func NewConsumer(client *redis.Client, cfg *RedisStreamConfig, orchestrator *harness.Orchestrator, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:        client,
		stream:        cfg.Stream,
		groupID:       cfg.Group,
		consumerName:  cfg.ConsumerName,
		resultsStream: cfg.ResultsStream,
		orchestrator:  orchestrator,
		logger:        logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, msg := range msgs[0].Messages {
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) Stop() error {
	// No-op
	return nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	// decode json
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		c.ack(ctx, msg.ID)
		return
	}

	var scoreRequest models.ScoreRequest
	if err := json.Unmarshal([]byte(payload), &scoreRequest); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.ack(ctx, msg.ID) // ack bad messages so they don't block the group
		return
	}
	if scoreRequest.Generated == "" || scoreRequest.Reference == "" {
		c.logger.Error().Str("id", msg.ID).Msg("Score request is missing generated or reference answer")
		c.ack(ctx, msg.ID)
		return
	}

	record := c.orchestrator.Score(ctx, scoreRequest.Question, scoreRequest.Generated, scoreRequest.Reference)

	c.logger.Info().
		Str("id", msg.ID).
		Str("request_id", scoreRequest.RequestID).
		Bool("failed", record.Failed).
		Float64("hallucination_score", record.HallucinationScore).
		Msg("Scoring complete")

	c.publishResult(ctx, scoreRequest.RequestID, record)
	c.ack(ctx, msg.ID)
}

func (c *Consumer) publishResult(ctx context.Context, requestID string, record models.EvaluationRecord) {
	if c.resultsStream == "" {
		return
	}

	result, err := json.Marshal(record)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID).Msg("Failed to encode result")
		return
	}

	err = c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.resultsStream,
		Values: map[string]any{
			"request_id": requestID,
			"payload":    string(result),
		},
	}).Err()
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", requestID).Msg("Failed to publish result")
	}
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}
