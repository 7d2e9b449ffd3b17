package repository

import (
	"context"
	"encoding/json"
	"time"

	"unilearn_backend/internal/dto"

	"github.com/go-redis/redis/v8"
)

const publicCoursesKey = "courses:public"

// CourseListCache keeps the unfiltered public course listing.
type CourseListCache interface {
	GetPublic(ctx context.Context) ([]dto.CourseSummaryDto, bool, error)
	SetPublic(ctx context.Context, courses []dto.CourseSummaryDto) error
	InvalidatePublic(ctx context.Context) error
}

type RedisCourseListCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisCourseListCache(rdb *redis.Client, ttl time.Duration) *RedisCourseListCache {
	return &RedisCourseListCache{Redis: rdb, TTL: ttl}
}

func (c *RedisCourseListCache) GetPublic(ctx context.Context) ([]dto.CourseSummaryDto, bool, error) {
	val, err := c.Redis.Get(ctx, publicCoursesKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var courses []dto.CourseSummaryDto
	if err := json.Unmarshal([]byte(val), &courses); err != nil {
		return nil, false, err
	}
	return courses, true, nil
}

func (c *RedisCourseListCache) SetPublic(ctx context.Context, courses []dto.CourseSummaryDto) error {
	data, err := json.Marshal(courses)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, publicCoursesKey, data, c.TTL).Err()
}

func (c *RedisCourseListCache) InvalidatePublic(ctx context.Context) error {
	return c.Redis.Del(ctx, publicCoursesKey).Err()
}

// NoopCourseListCache is used when redis is disabled.
type NoopCourseListCache struct{}

func (NoopCourseListCache) GetPublic(context.Context) ([]dto.CourseSummaryDto, bool, error) {
	return nil, false, nil
}

func (NoopCourseListCache) SetPublic(context.Context, []dto.CourseSummaryDto) error { return nil }

func (NoopCourseListCache) InvalidatePublic(context.Context) error { return nil }
