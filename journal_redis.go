package domtimeline

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisJournal appends records to a Redis stream
type RedisJournal struct {
	client *redis.Client
	stream string
	maxLen int64
}

// RedisConnectTimeout bounds the initial ping of a RedisJournal
const RedisConnectTimeout = 5 * time.Second

const payloadField = "payload"

// NewRedisJournal connects to the Redis server described by cfg
func NewRedisJournal(
	ctx context.Context, cfg JournalConfig,
) (*RedisJournal, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, RedisConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	stream := cfg.Stream
	if stream == "" {
		stream = DefaultJournalStream
	}
	return &RedisJournal{
		client: client,
		stream: stream,
		maxLen: cfg.MaxLen,
	}, nil
}

func (j *RedisJournal) Append(ctx context.Context, rec *JournalRecord) error {
	data, err := marshalJournalRecord(rec)
	if err != nil {
		return err
	}
	return j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: j.stream,
		MaxLen: j.maxLen,
		Values: map[string]any{payloadField: string(data)},
	}).Err()
}

// Records reads back every record still held by the stream, oldest first
func (j *RedisJournal) Records(ctx context.Context) ([]*JournalRecord, error) {
	msgs, err := j.client.XRange(ctx, j.stream, "-", "+").Result()
	if err != nil {
		return nil, err
	}

	res := make([]*JournalRecord, 0, len(msgs))
	for _, msg := range msgs {
		rec, err := parseStreamRecord(msg)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, nil
}

func (j *RedisJournal) Close() error {
	return j.client.Close()
}

func parseStreamRecord(msg redis.XMessage) (*JournalRecord, error) {
	raw, ok := msg.Values[payloadField]
	if !ok {
		return nil, ErrJournalRecordMalformed
	}

	payload, ok := raw.(string)
	if !ok {
		if b, okBytes := raw.([]byte); okBytes {
			payload = string(b)
		} else {
			return nil, ErrJournalRecordMalformed
		}
	}
	return unmarshalJournalRecord(msg.ID, []byte(payload))
}
