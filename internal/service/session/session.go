// Package session 按用户保存对话历史
// 内存分片存储，可选 Redis 写穿，空闲超过 TTL 的会话由后台清理
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	shardCount = 32
	// Redis key 前缀
	sessionKeyPrefix = "session:"
)

// Config 会话配置
type Config struct {
	TTL             time.Duration // 空闲过期时间
	MaxMessages     int           // 每个会话最多保留的消息数
	JanitorInterval time.Duration // 清理间隔
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		TTL:             24 * time.Hour,
		MaxMessages:     100,
		JanitorInterval: 5 * time.Minute,
	}
}

// Session 单个用户的对话
type Session struct {
	ID        string
	Messages  []*schema.Message
	CreatedAt time.Time
	UpdatedAt time.Time

	mu      sync.Mutex
	loaded  bool
	evicted bool
}

type shard struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// Manager 会话管理器
// 同一用户的追加串行执行，不同用户互不阻塞
type Manager struct {
	shards [shardCount]*shard
	redis  *redis.Client
	cfg    Config
	log    *zap.Logger
	now    func() time.Time

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// sessionData 会话数据（用于 Redis 存储）
type sessionData struct {
	ID        string        `json:"id"`
	Messages  []messageData `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// messageData 消息数据（用于 Redis 存储）
type messageData struct {
	Role    string         `json:"role"`
	Content string         `json:"content"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// roleToSchema 将字符串角色转换为 schema.RoleType
func roleToSchema(role string) schema.RoleType {
	switch role {
	case "system":
		return schema.System
	case "assistant":
		return schema.Assistant
	default:
		return schema.User
	}
}

// NewManager 创建会话管理器，redisClient 可为 nil
func NewManager(redisClient *redis.Client, cfg Config, log *zap.Logger) *Manager {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = def.MaxMessages
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = def.JanitorInterval
	}
	if log == nil {
		log = zap.NewNop()
	}

	m := &Manager{
		redis: redisClient,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for i := range m.shards {
		m.shards[i] = &shard{sessions: make(map[string]*Session)}
	}
	return m
}

func (m *Manager) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return m.shards[h.Sum32()%shardCount]
}

// acquire 返回已加锁的会话，调用方负责解锁
// 若拿到的会话恰好被清理，重新获取
func (m *Manager) acquire(ctx context.Context, userID string) *Session {
	for {
		sh := m.shardFor(userID)
		sh.mu.Lock()
		sess, ok := sh.sessions[userID]
		if !ok {
			now := m.now()
			sess = &Session{ID: userID, Messages: []*schema.Message{}, CreatedAt: now, UpdatedAt: now}
			sh.sessions[userID] = sess
		}
		sh.mu.Unlock()

		sess.mu.Lock()
		if sess.evicted {
			sess.mu.Unlock()
			continue
		}
		if m.expired(sess) {
			now := m.now()
			sess.Messages = []*schema.Message{}
			sess.CreatedAt, sess.UpdatedAt = now, now
			sess.loaded = true
		}
		if !sess.loaded {
			m.loadFromRedis(ctx, sess)
			sess.loaded = true
		}
		return sess
	}
}

func (m *Manager) expired(sess *Session) bool {
	return len(sess.Messages) > 0 && m.now().Sub(sess.UpdatedAt) > m.cfg.TTL
}

// Append 追加消息，超出上限时丢弃最早的消息
func (m *Manager) Append(ctx context.Context, userID string, msgs ...*schema.Message) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	if len(msgs) == 0 {
		return nil
	}

	sess := m.acquire(ctx, userID)
	defer sess.mu.Unlock()

	sess.Messages = append(sess.Messages, msgs...)
	if over := len(sess.Messages) - m.cfg.MaxMessages; over > 0 {
		sess.Messages = append([]*schema.Message(nil), sess.Messages[over:]...)
	}
	sess.UpdatedAt = m.now()

	// 同步到 Redis，失败不影响主流程
	if m.redis != nil {
		if err := m.saveToRedis(ctx, sess); err != nil {
			m.log.Warn("failed to save session to redis", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// History 按追加顺序返回消息副本
func (m *Manager) History(ctx context.Context, userID string) ([]*schema.Message, error) {
	sess := m.acquire(ctx, userID)
	defer sess.mu.Unlock()

	out := make([]*schema.Message, len(sess.Messages))
	copy(out, sess.Messages)
	return out, nil
}

// Clear 清空会话
func (m *Manager) Clear(ctx context.Context, userID string) error {
	sh := m.shardFor(userID)
	sh.mu.Lock()
	sess, ok := sh.sessions[userID]
	delete(sh.sessions, userID)
	sh.mu.Unlock()

	if ok {
		sess.mu.Lock()
		sess.evicted = true
		sess.mu.Unlock()
	}

	if m.redis != nil {
		if err := m.redis.Del(ctx, sessionKeyPrefix+userID).Err(); err != nil {
			return fmt.Errorf("failed to delete session from redis: %w", err)
		}
	}
	return nil
}

// Len 内存中的会话数
func (m *Manager) Len() int {
	n := 0
	for _, sh := range m.shards {
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}

// ========== 过期清理 ==========

// EvictExpired 移除空闲超过 TTL 的会话，返回移除数量
func (m *Manager) EvictExpired() int {
	now := m.now()
	evicted := 0
	for _, sh := range m.shards {
		sh.mu.Lock()
		for id, sess := range sh.sessions {
			// 正在被使用的会话跳过，下一轮再判断
			if !sess.mu.TryLock() {
				continue
			}
			if now.Sub(sess.UpdatedAt) > m.cfg.TTL {
				sess.evicted = true
				delete(sh.sessions, id)
				evicted++
			}
			sess.mu.Unlock()
		}
		sh.mu.Unlock()
	}
	return evicted
}

// Start 启动后台清理
func (m *Manager) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.cfg.JanitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				if n := m.EvictExpired(); n > 0 {
					m.log.Debug("evicted idle sessions", zap.Int("count", n))
				}
			}
		}
	}()
}

// Close 停止后台清理，未调用 Start 时直接返回
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	if m.started.Load() {
		<-m.done
	}
}

// ========== Redis ==========

// loadFromRedis 从 Redis 恢复会话
func (m *Manager) loadFromRedis(ctx context.Context, sess *Session) {
	if m.redis == nil {
		return
	}
	data, err := m.redis.Get(ctx, sessionKeyPrefix+sess.ID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			m.log.Warn("failed to load session from redis", zap.String("user_id", sess.ID), zap.Error(err))
		}
		return
	}

	var sd sessionData
	if err := json.Unmarshal(data, &sd); err != nil {
		m.log.Warn("corrupted session in redis", zap.String("user_id", sess.ID), zap.Error(err))
		return
	}

	messages := make([]*schema.Message, len(sd.Messages))
	for i, md := range sd.Messages {
		messages[i] = &schema.Message{
			Role:    roleToSchema(md.Role),
			Content: md.Content,
			Extra:   md.Extra,
		}
	}
	sess.Messages = messages
	sess.CreatedAt = sd.CreatedAt
	sess.UpdatedAt = sd.UpdatedAt
}

// saveToRedis 保存会话到 Redis，过期时间与内存 TTL 一致
func (m *Manager) saveToRedis(ctx context.Context, sess *Session) error {
	messages := make([]messageData, len(sess.Messages))
	for i, msg := range sess.Messages {
		messages[i] = messageData{
			Role:    string(msg.Role),
			Content: msg.Content,
			Extra:   msg.Extra,
		}
	}

	data, err := json.Marshal(sessionData{
		ID:        sess.ID,
		Messages:  messages,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	})
	if err != nil {
		return err
	}
	return m.redis.Set(ctx, sessionKeyPrefix+sess.ID, data, m.cfg.TTL).Err()
}
