package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-result-service/internal/app"
	"quiz-result-service/internal/domain"
)

// ResultStore keeps results in Redis.
// Each result is stored as JSON:   SET results:{id} <json>
// Leaderboards are sorted sets:    ZADD results:quiz:{quizID} <rankScore> <member>
// Recency indexes are sorted sets: ZADD results:user:{userID} / results:all <unix ms> <member>
// Members are zero-padded ids so equal scores fall back to id order.
type ResultStore struct {
	client *redis.Client
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

const (
	seqKey = "results:seq"
	allKey = "results:all"
)

func resultKey(id int64) string { return "results:" + strconv.FormatInt(id, 10) }
func quizKey(quizID int64) string { return "results:quiz:" + strconv.FormatInt(quizID, 10) }
func userKey(userID int64) string { return "results:user:" + strconv.FormatInt(userID, 10) }
func member(id int64) string { return fmt.Sprintf("%019d", id) }
func recencyScore(t time.Time) float64 { return float64(t.UnixMilli()) }

// rankScale is larger than any stored time, so one point always outweighs
// the whole time range.
const rankScale = int64(domain.MaxTimeSpentSeconds) + 1

// rankScore sorts ascending into leaderboard order: more points first, then
// less time. Inputs are clamped to the domain bounds, which keeps the score
// below 2^53 and therefore exact.
func rankScore(points int, spent time.Duration) float64 {
	p := min(max(int64(points), 0), domain.MaxQuizPoints)
	secs := min(max(int64(spent/time.Second), 0), int64(domain.MaxTimeSpentSeconds))
	return float64(-p*rankScale + secs)
}

// Create assigns an id from a counter, then writes the document and every
// index in one MULTI/EXEC block.
func (s *ResultStore) Create(ctx context.Context, result *domain.GradedResult) error {
	id, err := s.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return fmt.Errorf("allocate result id: %w", err)
	}

	stored := *result
	stored.ID = id
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	m := member(id)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, resultKey(id), payload, 0)
		pipe.ZAdd(ctx, quizKey(stored.QuizID), redis.Z{Score: rankScore(stored.TotalPoints, stored.TimeSpent), Member: m})
		pipe.ZAdd(ctx, userKey(stored.UserID), redis.Z{Score: recencyScore(stored.SubmittedAt), Member: m})
		pipe.ZAdd(ctx, allKey, redis.Z{Score: recencyScore(stored.SubmittedAt), Member: m})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	result.ID = id
	return nil
}

func (s *ResultStore) Get(ctx context.Context, id int64) (domain.GradedResult, bool, error) {
	raw, err := s.client.Get(ctx, resultKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.GradedResult{}, false, nil
	}
	if err != nil {
		return domain.GradedResult{}, false, fmt.Errorf("get result %d: %w", id, err)
	}
	var result domain.GradedResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.GradedResult{}, false, fmt.Errorf("decode result %d: %w", id, err)
	}
	return result, true, nil
}

func (s *ResultStore) ListByUser(ctx context.Context, userID int64) ([]domain.GradedResult, error) {
	members, err := s.client.ZRevRange(ctx, userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list user results: %w", err)
	}
	out, err := s.load(ctx, members)
	if err != nil {
		return nil, err
	}
	app.SortByRecency(out)
	return out, nil
}

func (s *ResultStore) ListByQuiz(ctx context.Context, quizID int64, limit int) ([]domain.GradedResult, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	members, err := s.client.ZRange(ctx, quizKey(quizID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}
	return s.load(ctx, members)
}

func (s *ResultStore) ListAll(ctx context.Context) ([]domain.GradedResult, error) {
	members, err := s.client.ZRevRange(ctx, allKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out, err := s.load(ctx, members)
	if err != nil {
		return nil, err
	}
	app.SortByRecency(out)
	return out, nil
}

// load fetches documents in index order and strips answer detail.
func (s *ResultStore) load(ctx context.Context, members []string) ([]domain.GradedResult, error) {
	out := make([]domain.GradedResult, 0, len(members))
	if len(members) == 0 {
		return out, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad index member %q: %w", m, err)
		}
		keys[i] = resultKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var result domain.GradedResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, result.Summary())
	}
	return out, nil
}
