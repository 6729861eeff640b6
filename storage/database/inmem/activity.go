package inmemdb

import (
	"context"
	"sort"

	"github.com/TanishSen/Learn-Scope/core/activity"
)

type activityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) QueryRecentActivities(_ context.Context, limit int) ([]activity.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	acts := make([]activity.Activity, 0, len(repo.db.activity.table))
	for _, act := range repo.db.activity.table {
		acts = append(acts, *act)
	}
	sort.Slice(acts, func(i, j int) bool {
		return newer(acts[i].CreatedAt, acts[i].ID, acts[j].CreatedAt, acts[j].ID)
	})
	return limitTo(acts, limit), nil
}
