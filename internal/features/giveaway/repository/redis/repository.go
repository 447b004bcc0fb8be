package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"giveaway-entry-backend/internal/features/giveaway/models"
	"giveaway-entry-backend/internal/features/giveaway/repository"
)

const (
	keyPrefixGiveaway    = "giveaway:"
	keyGiveawayOrder     = "giveaways:all"
	keyPrefixShare       = "share:"
	keyPrefixShareIndex  = "shares:"
	fieldEntries         = "entries"
	fieldRank            = "rank"
	fieldCount           = "count"
	fieldLastSharedAt    = "last_shared_at"
	maxOptimisticRetries = 10
)

func makeGiveawayKey(id string) string {
	return keyPrefixGiveaway + id
}

func makeParticipantKey(giveawayID string, userID int64) string {
	return keyPrefixGiveaway + giveawayID + ":participant:" + strconv.FormatInt(userID, 10)
}

func makeShareKey(key models.ShareKey) string {
	return keyPrefixShare + key.String()
}

func makeShareIndexKey(userID int64, giveawayID string) string {
	return keyPrefixShareIndex + strconv.FormatInt(userID, 10) + ":" + giveawayID
}

type redisRepository struct {
	client *redis.Client
}

func NewGiveawayRepository(client *redis.Client) repository.GiveawayRepository {
	return &redisRepository{client: client}
}

func (r *redisRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	if err := giveaway.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(giveaway)
	if err != nil {
		return fmt.Errorf("failed to marshal giveaway: %w", err)
	}

	ok, err := r.client.SetNX(ctx, makeGiveawayKey(giveaway.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrGiveawayExists
	}
	return r.client.RPush(ctx, keyGiveawayOrder, giveaway.ID).Err()
}

func (r *redisRepository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	return getGiveaway(ctx, r.client, id)
}

// getGiveaway works for both the client and a WATCH transaction.
func getGiveaway(ctx context.Context, c redis.Cmdable, id string) (*models.Giveaway, error) {
	data, err := c.Get(ctx, makeGiveawayKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrGiveawayNotFound
	}
	if err != nil {
		return nil, err
	}

	var giveaway models.Giveaway
	if err := json.Unmarshal(data, &giveaway); err != nil {
		return nil, fmt.Errorf("failed to unmarshal giveaway %s: %w", id, err)
	}
	return &giveaway, nil
}

func (r *redisRepository) List(ctx context.Context) ([]*models.Giveaway, error) {
	ids, err := r.client.LRange(ctx, keyGiveawayOrder, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*models.Giveaway, 0, len(ids))
	for _, id := range ids {
		g, err := r.GetByID(ctx, id)
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *redisRepository) GetParticipation(ctx context.Context, giveawayID string, userID int64) (*models.Participation, error) {
	exists, err := r.client.Exists(ctx, makeGiveawayKey(giveawayID)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, repository.ErrGiveawayNotFound
	}
	return getParticipation(ctx, r.client, giveawayID, userID)
}

func getParticipation(ctx context.Context, c redis.Cmdable, giveawayID string, userID int64) (*models.Participation, error) {
	vals, err := c.HGetAll(ctx, makeParticipantKey(giveawayID, userID)).Result()
	if err != nil {
		return nil, err
	}
	p := &models.Participation{GiveawayID: giveawayID, UserID: userID}
	if v, ok := vals[fieldEntries]; ok {
		if p.Entries, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("corrupt entries for %s: %w", makeParticipantKey(giveawayID, userID), err)
		}
	}
	if v, ok := vals[fieldRank]; ok {
		if p.Rank, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("corrupt rank for %s: %w", makeParticipantKey(giveawayID, userID), err)
		}
	}
	return p, nil
}

func (r *redisRepository) ApplyAward(ctx context.Context, giveawayID string, userID int64, award models.Award) (*models.Giveaway, *models.Participation, error) {
	gKey := makeGiveawayKey(giveawayID)
	pKey := makeParticipantKey(giveawayID, userID)

	var (
		giveaway *models.Giveaway
		part     *models.Participation
	)
	txf := func(tx *redis.Tx) error {
		g, err := getGiveaway(ctx, tx, giveawayID)
		if err != nil {
			return err
		}
		p, err := getParticipation(ctx, tx, giveawayID, userID)
		if err != nil {
			return err
		}

		if !p.Joined() {
			g.TotalParticipants++
		}
		p.Entries += award.Entries
		p.Rank = repository.NextRank(p.Rank, g.TotalParticipants, award.RankImprovement)
		g.TotalEntries += award.Entries

		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("failed to marshal giveaway: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gKey, data, 0)
			pipe.HSet(ctx, pKey, fieldEntries, p.Entries, fieldRank, p.Rank)
			return nil
		})
		if err != nil {
			return err
		}
		giveaway, part = g, p
		return nil
	}

	if err := r.watch(ctx, txf, gKey, pKey); err != nil {
		return nil, nil, err
	}
	return giveaway, part, nil
}

func (r *redisRepository) Finish(ctx context.Context, giveawayID string, winner models.Winner, finishedAt time.Time) (*models.Giveaway, error) {
	gKey := makeGiveawayKey(giveawayID)

	var finished *models.Giveaway
	txf := func(tx *redis.Tx) error {
		g, err := getGiveaway(ctx, tx, giveawayID)
		if err != nil {
			return err
		}
		if g.StoredPhase == models.PhaseFinished {
			return repository.ErrAlreadyFinished
		}
		g.StoredPhase = models.PhaseFinished
		g.FinishedAt = models.FormatInstant(finishedAt)
		g.Winner = &winner

		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("failed to marshal giveaway: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gKey, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		finished = g
		return nil
	}

	if err := r.watch(ctx, txf, gKey); err != nil {
		return nil, err
	}
	return finished, nil
}

func (r *redisRepository) watch(ctx context.Context, txf func(tx *redis.Tx) error, keys ...string) error {
	return watchWithRetry(ctx, r.client, txf, keys...)
}

// watchWithRetry runs txf under WATCH and retries when another writer touched the keys.
func watchWithRetry(ctx context.Context, client *redis.Client, txf func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxOptimisticRetries; i++ {
		err := client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("optimistic transaction on %v: %w", keys, redis.TxFailedErr)
}

type shareLedger struct {
	client *redis.Client
}

// NewShareLedger stores one hash per (user, giveaway, channel) plus a per-(user, giveaway) channel index.
func NewShareLedger(client *redis.Client) repository.ShareLedgerStore {
	return &shareLedger{client: client}
}

func readShareEvent(ctx context.Context, c redis.Cmdable, key models.ShareKey) (*models.ShareEvent, error) {
	vals, err := c.HGetAll(ctx, makeShareKey(key)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}

	count, err := strconv.ParseInt(vals[fieldCount], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt share count for %s: %w", makeShareKey(key), err)
	}
	nanos, err := strconv.ParseInt(vals[fieldLastSharedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt share timestamp for %s: %w", makeShareKey(key), err)
	}
	return &models.ShareEvent{
		Channel:   key.Channel,
		Timestamp: time.Unix(0, nanos).UTC(),
		Count:     count,
	}, nil
}

func (l *shareLedger) LastShare(ctx context.Context, key models.ShareKey) (*models.ShareEvent, error) {
	return readShareEvent(ctx, l.client, key)
}

func (l *shareLedger) RecordShare(ctx context.Context, key models.ShareKey, at time.Time, window time.Duration) (*models.ShareEvent, error) {
	rowKey := makeShareKey(key)

	var recorded, blocking *models.ShareEvent
	txf := func(tx *redis.Tx) error {
		last, err := readShareEvent(ctx, tx, key)
		if err != nil {
			return err
		}
		if !repository.CooldownElapsed(last, at, window) {
			blocking = last
			return repository.ErrCooldownActive
		}

		next := &models.ShareEvent{Channel: key.Channel, Timestamp: at.UTC(), Count: 1}
		if last != nil {
			next.Count = last.Count + 1
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, rowKey, fieldCount, next.Count, fieldLastSharedAt, next.Timestamp.UnixNano())
			pipe.SAdd(ctx, makeShareIndexKey(key.UserID, key.GiveawayID), string(key.Channel))
			return nil
		})
		if err != nil {
			return err
		}
		recorded = next
		return nil
	}

	err := watchWithRetry(ctx, l.client, txf, rowKey)
	if errors.Is(err, repository.ErrCooldownActive) {
		return blocking, err
	}
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

func (l *shareLedger) RevertShare(ctx context.Context, key models.ShareKey, recorded models.ShareEvent, previous *models.ShareEvent) error {
	rowKey := makeShareKey(key)

	txf := func(tx *redis.Tx) error {
		cur, err := readShareEvent(ctx, tx, key)
		if err != nil {
			return err
		}
		if cur == nil || !repository.SameShare(*cur, recorded) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if previous == nil {
				pipe.Del(ctx, rowKey)
				pipe.SRem(ctx, makeShareIndexKey(key.UserID, key.GiveawayID), string(key.Channel))
				return nil
			}
			pipe.HSet(ctx, rowKey, fieldCount, previous.Count, fieldLastSharedAt, previous.Timestamp.UnixNano())
			return nil
		})
		return err
	}

	return watchWithRetry(ctx, l.client, txf, rowKey)
}

func (l *shareLedger) History(ctx context.Context, userID int64, giveawayID string) ([]models.ShareEvent, error) {
	channels, err := l.client.SMembers(ctx, makeShareIndexKey(userID, giveawayID)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]models.ShareEvent, 0, len(channels))
	for _, ch := range channels {
		ev, err := l.LastShare(ctx, models.ShareKey{UserID: userID, GiveawayID: giveawayID, Channel: models.Channel(ch)})
		if err != nil {
			return nil, err
		}
		if ev != nil {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Channel < out[j].Channel
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
