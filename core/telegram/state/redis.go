package state

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"jobbot/core/logger"
	tghelpers "jobbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

const (
	redisKeyPrefix  = "fsm:"
	redisOpTimeout  = 2 * time.Second
	defaultRedisTTL = 24 * time.Hour
)

type redisManager struct {
	*handlerRegistry

	client *redis.Client
	ttl    time.Duration
}

// RedisOptions configures the Redis-backed session manager.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisManager constructs a Manager that persists sessions in Redis,
// so conversations survive bot restarts.
func NewRedisManager(opts RedisOptions) (Manager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &redisManager{
		handlerRegistry: newHandlerRegistry(),
		client:          client,
		ttl:             ttl,
	}, nil
}

func redisSessionKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

func (m *redisManager) load(userID int64) *Session {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := m.client.Get(ctx, redisSessionKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.TG.Warn("session load failed",
				slog.String("event", "fsm.redis"),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
		return &Session{State: StateIdle, TempData: make(map[string]interface{})}
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		logger.TG.Warn("session decode failed",
			slog.String("event", "fsm.redis"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return &Session{State: StateIdle, TempData: make(map[string]interface{})}
	}
	if sess.State == "" {
		sess.State = StateIdle
	}
	if sess.TempData == nil {
		sess.TempData = make(map[string]interface{})
	}
	return &sess
}

func (m *redisManager) store(userID int64, sess *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := json.Marshal(sess)
	if err != nil {
		logger.TG.Warn("session encode failed",
			slog.String("event", "fsm.redis"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return
	}
	if err := m.client.Set(ctx, redisSessionKey(userID), raw, m.ttl).Err(); err != nil {
		logger.TG.Warn("session store failed",
			slog.String("event", "fsm.redis"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

// Get returns the session for a user, or a default idle session.
func (m *redisManager) Get(userID int64) *Session {
	return m.load(userID)
}

// SetState sets the FSM state for the given user.
func (m *redisManager) SetState(userID int64, st State) {
	sess := m.load(userID)
	sess.State = st
	m.store(userID, sess)
}

// GetState returns the current FSM state of a user.
func (m *redisManager) GetState(userID int64) State {
	return m.load(userID).State
}

// HasState checks if a user has an active state other than idle.
func (m *redisManager) HasState(userID int64) bool {
	return m.load(userID).State != StateIdle
}

// ClearState resets the FSM state to idle without removing temp data.
func (m *redisManager) ClearState(userID int64) {
	sess := m.load(userID)
	sess.State = StateIdle
	m.store(userID, sess)
}

// SetTemp stores a temporary key/value pair for the given user session.
func (m *redisManager) SetTemp(userID int64, key string, value interface{}) {
	sess := m.load(userID)
	sess.TempData[key] = value
	m.store(userID, sess)
}

// GetTemp retrieves a temporary value by key for the given user session.
func (m *redisManager) GetTemp(userID int64, key string) (interface{}, bool) {
	val, ok := m.load(userID).TempData[key]
	return val, ok
}

// GetTempInt64 retrieves a temporary value by key and asserts it as int64.
// Values survive a JSON round-trip, so numbers come back as float64.
func (m *redisManager) GetTempInt64(userID int64, key string) (int64, bool) {
	val, found := m.GetTemp(userID, key)
	if !found {
		return 0, false
	}
	return asInt64(val)
}

// ClearTemp removes a temporary key/value pair for the given user session.
func (m *redisManager) ClearTemp(userID int64, key string) {
	sess := m.load(userID)
	delete(sess.TempData, key)
	m.store(userID, sess)
}

// Clear removes the entire session for a user.
func (m *redisManager) Clear(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := m.client.Del(ctx, redisSessionKey(userID)).Err(); err != nil {
		logger.TG.Warn("session delete failed",
			slog.String("event", "fsm.redis"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}
}

// InProgress reports whether the user currently has an active FSM state.
func (m *redisManager) InProgress(userID int64) bool {
	return m.HasState(userID)
}

// ManagerHandler executes the handler registered for the user's current state, if any.
func (m *redisManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	if handler, ok := m.handler(current); ok {
		return handler(c)
	}
	return nil
}
