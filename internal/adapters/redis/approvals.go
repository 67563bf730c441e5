package redisad

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const approvedKey = "reviews:approved"

// ApprovalStore keeps approved review ids in a Redis set. Redis persistence
// (AOF/RDB) provides durability across restarts.
type ApprovalStore struct {
	c   redis.UniversalClient
	key string
}

func NewApprovalStore(c redis.UniversalClient) *ApprovalStore {
	return &ApprovalStore{c: c, key: approvedKey}
}

func (s *ApprovalStore) Load(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.c.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *ApprovalStore) Set(ctx context.Context, id string, approved bool) error {
	if approved {
		return s.c.SAdd(ctx, s.key, id).Err()
	}
	return s.c.SRem(ctx, s.key, id).Err()
}
