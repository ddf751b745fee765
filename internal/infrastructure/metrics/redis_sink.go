package metrics

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/xbpneus/authgate/domain"
)

// Histogram summarises the observations recorded under one name
type Histogram struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Max   float64 `json:"max"`
}

// Snapshot is the state of every counter and histogram at read time
type Snapshot struct {
	Counters   map[string]int64     `json:"counters"`
	Histograms map[string]Histogram `json:"histograms"`
}

// RedisSink implements domain.MetricsSink on Redis hashes, so counters are
// shared by every replica behind the load balancer. Write errors are
// logged and dropped.
type RedisSink struct {
	client *redis.Client
	prefix string
}

// NewRedisSink creates a new Redis metrics sink
func NewRedisSink(client *redis.Client, prefix string) *RedisSink {
	return &RedisSink{client: client, prefix: prefix}
}

func (s *RedisSink) countersKey() string   { return s.prefix + ":counters" }
func (s *RedisSink) histogramsKey() string { return s.prefix + ":histograms" }

// Increment implements domain.MetricsSink
func (s *RedisSink) Increment(ctx context.Context, counter string) {
	if err := s.client.HIncrBy(ctx, s.countersKey(), counter, 1).Err(); err != nil {
		log.Printf("METRICS: increment failed counter=%s err=%v", counter, err)
	}
}

// observeScript updates count, sum and max of one histogram atomically
var observeScript = redis.NewScript(`
	local key = KEYS[1]
	local name = ARGV[1]
	local value = tonumber(ARGV[2])
	redis.call('HINCRBY', key, name .. '|count', 1)
	redis.call('HINCRBYFLOAT', key, name .. '|sum', value)
	local max = tonumber(redis.call('HGET', key, name .. '|max'))
	if max == nil or value > max then
		redis.call('HSET', key, name .. '|max', ARGV[2])
	end
	return 1
`)

// Observe implements domain.MetricsSink
func (s *RedisSink) Observe(ctx context.Context, histogram string, value float64) {
	v := strconv.FormatFloat(value, 'f', -1, 64)
	if err := observeScript.Run(ctx, s.client, []string{s.histogramsKey()}, histogram, v).Err(); err != nil {
		log.Printf("METRICS: observe failed histogram=%s err=%v", histogram, err)
	}
}

// Snapshot reads every counter and histogram
func (s *RedisSink) Snapshot(ctx context.Context) (*Snapshot, error) {
	counters, err := s.client.HGetAll(ctx, s.countersKey()).Result()
	if err != nil {
		return nil, err
	}
	fields, err := s.client.HGetAll(ctx, s.histogramsKey()).Result()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Counters:   make(map[string]int64, len(counters)),
		Histograms: make(map[string]Histogram),
	}
	for name, raw := range counters {
		n, _ := strconv.ParseInt(raw, 10, 64)
		snap.Counters[name] = n
	}
	for field, raw := range fields {
		i := strings.LastIndex(field, "|")
		if i < 0 {
			continue
		}
		name, part := field[:i], field[i+1:]
		h := snap.Histograms[name]
		switch part {
		case "count":
			h.Count, _ = strconv.ParseInt(raw, 10, 64)
		case "sum":
			h.Sum, _ = strconv.ParseFloat(raw, 64)
		case "max":
			h.Max, _ = strconv.ParseFloat(raw, 64)
		}
		snap.Histograms[name] = h
	}
	return snap, nil
}

// NopSink discards everything
type NopSink struct{}

func (NopSink) Increment(context.Context, string)        {}
func (NopSink) Observe(context.Context, string, float64) {}

var (
	_ domain.MetricsSink = (*RedisSink)(nil)
	_ domain.MetricsSink = NopSink{}
)
