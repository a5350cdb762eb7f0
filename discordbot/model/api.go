// Package model provides configuration, task and bookmark repositories
package model

import (
	redis "github.com/go-redis/redis/v7"
)

// Task provides interface for persistable tasks
type Task interface {
	Scope() string
	Name() string
}

// NewRepository provides Repository instance, keys of namespaced caches are prefixed with namespace
func NewRepository(client *redis.Client, namespace string) *Repository {
	return &Repository{
		Client:    client,
		Namespace: namespace,
		Groups:    make(map[string]bool),
	}
}
