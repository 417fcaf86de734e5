package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"smartair-backend/internal/models"
)

const (
	redisKeyPrefix    = "smartair:reservation:"
	redisIndexKey     = "smartair:reservations:by_created"
	redisMembersKey   = "smartair:reservations:members"
	redisSeqKey       = "smartair:reservations:seq"
	redisScanPage     = 200
	redisMaxTxRetries = 5
)

// RedisStore keeps each reservation as a JSON value plus a sorted-set index
// scored by creation time in microseconds. Index members are
// "<zero-padded seq>:<id>", so equal scores list in insertion order. The
// members hash maps id to member for removal.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func reservationKey(id string) string {
	return redisKeyPrefix + id
}

func createdScore(r *models.Reservation) float64 {
	return float64(r.CreatedAt.UnixMicro())
}

func indexMember(seq int64, id string) string {
	return fmt.Sprintf("%020d:%s", seq, id)
}

func idFromMember(member string) string {
	if _, id, ok := strings.Cut(member, ":"); ok {
		return id
	}
	return member
}

// watch runs txf under WATCH on keys, retrying when another client touched
// them first.
func (s *RedisStore) watch(ctx context.Context, op string, txf func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < redisMaxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("%s: too much contention", op)
}

func (s *RedisStore) Insert(ctx context.Context, r *models.Reservation) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode reservation: %w", err)
	}
	seq, err := s.client.Incr(ctx, redisSeqKey).Result()
	if err != nil {
		return err
	}
	key := reservationKey(r.ID)
	member := indexMember(seq, r.ID)

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("insert %s: %w", r.ID, ErrAlreadyExists)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: createdScore(r), Member: member})
			pipe.HSet(ctx, redisMembersKey, r.ID, member)
			return nil
		})
		return err
	}

	return s.watch(ctx, "insert "+r.ID, txf, key)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Reservation, error) {
	data, err := s.client.Get(ctx, reservationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeReservation(data)
}

func (s *RedisStore) List(ctx context.Context, filter models.ListReservationsFilter) ([]*models.Reservation, error) {
	limit := ClampLimit(filter.Limit)
	out := make([]*models.Reservation, 0, limit)

	for start := int64(0); len(out) < limit; start += redisScanPage {
		members, err := s.client.ZRevRange(ctx, redisIndexKey, start, start+redisScanPage-1).Result()
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			break
		}

		keys := make([]string, len(members))
		for i, member := range members {
			keys[i] = reservationKey(idFromMember(member))
		}
		vals, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, err
		}

		for _, v := range vals {
			str, ok := v.(string)
			if !ok {
				// Deleted between the index read and the fetch.
				continue
			}
			r, err := decodeReservation([]byte(str))
			if err != nil {
				return nil, err
			}
			if filter.Status != nil && r.Status != *filter.Status {
				continue
			}
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}

	return out, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, mutate func(r *models.Reservation) error) (*models.Reservation, error) {
	key := reservationKey(id)
	var updated *models.Reservation

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		r, err := decodeReservation(data)
		if err != nil {
			return err
		}
		if err := mutate(r); err != nil {
			return err
		}
		r.ID = id
		next, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode reservation: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		if err == nil {
			updated = r
		}
		return err
	}

	if err := s.watch(ctx, "update "+id, txf, key); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	key := reservationKey(id)

	txf := func(tx *redis.Tx) error {
		member, err := tx.HGet(ctx, redisMembersKey, id).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		var del *redis.IntCmd
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			del = pipe.Del(ctx, key)
			if member != "" {
				pipe.ZRem(ctx, redisIndexKey, member)
			}
			pipe.HDel(ctx, redisMembersKey, id)
			return nil
		})
		if err != nil {
			return err
		}
		if del.Val() == 0 {
			return ErrNotFound
		}
		return nil
	}

	return s.watch(ctx, "delete "+id, txf, key)
}

func decodeReservation(data []byte) (*models.Reservation, error) {
	var r models.Reservation
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode reservation: %w", err)
	}
	return &r, nil
}
