package repository

import "errors"

var (
	ErrRedisConnection = errors.New("redis connection error")
	ErrEmptyKey        = errors.New("empty coordination key")
	ErrLockLost        = errors.New("sweep lock no longer held")
)
