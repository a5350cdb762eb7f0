package model

import (
	"encoding/json"
	"errors"

	redis "github.com/go-redis/redis/v7"
)

const (
	bookmarkScope   = "bookmark"
	bookmarkRetries = 16
)

var (
	// ErrConflict is returned when optimistic update keeps losing to concurrent writers
	ErrConflict = errors.New("too many concurrent updates")
)

func decodeIDs(s string) (ids []int64, err error) {
	err = json.Unmarshal([]byte(s), &ids)
	if ids == nil {
		ids = []int64{}
	}

	return
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}

	return false
}

// Bookmarks returns message ids member has bookmarked, empty when member has none
func (repo *Repository) Bookmarks(memberID string) ([]int64, error) {
	s, err := repo.CacheGet(bookmarkScope, memberID, "[]")
	if err != nil {
		return nil, err
	}

	return decodeIDs(s)
}

// HasBookmark returns true if member has already bookmarked given message
func (repo *Repository) HasBookmark(memberID string, messageID int64) (bool, error) {
	ids, err := repo.Bookmarks(memberID)
	if err != nil {
		return false, err
	}

	return containsID(ids, messageID), nil
}

// BookmarkAdd appends message id to member list, returns false if it was already present
func (repo *Repository) BookmarkAdd(memberID string, messageID int64) (added bool, err error) {
	err = repo.updateIDs(memberID, func(ids []int64) ([]int64, bool) {
		added = !containsID(ids, messageID)
		if !added {
			return ids, false
		}

		return append(ids, messageID), true
	})

	return
}

// BookmarkRemove removes message ids from member list, absent ids are ignored
func (repo *Repository) BookmarkRemove(memberID string, messageIDs ...int64) (removed bool, err error) {
	err = repo.updateIDs(memberID, func(ids []int64) ([]int64, bool) {
		res := ids[:0:0]

		for _, v := range ids {
			if containsID(messageIDs, v) {
				continue
			}

			res = append(res, v)
		}

		removed = len(res) != len(ids)

		return res, removed
	})

	return
}

// updateIDs runs read-modify-write under WATCH, retrying when key changes concurrently
func (repo *Repository) updateIDs(memberID string, update func(ids []int64) ([]int64, bool)) error {
	key := repo.CacheKey(bookmarkScope, memberID)

	txf := func(tx *redis.Tx) error {
		s, err := tx.Get(key).Result()

		switch {
		case err == redis.Nil:
			s = "[]"
		case err != nil:
			return err
		}

		ids, err := decodeIDs(s)
		if err != nil {
			return err
		}

		ids, changed := update(ids)
		if !changed {
			return nil
		}

		bs, err := json.Marshal(ids)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(func(pipe redis.Pipeliner) error {
			pipe.Set(key, string(bs), 0)

			return nil
		})

		return err
	}

	for i := 0; i < bookmarkRetries; i++ {
		err := repo.Client.Watch(txf, key)
		if err == redis.TxFailedErr {
			continue
		}

		return err
	}

	return ErrConflict
}
