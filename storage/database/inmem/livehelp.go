package inmemdb

import (
	"context"
	"sort"

	"github.com/TanishSen/Learn-Scope/core/livehelp"
)

type liveHelpRepository struct {
	db *DB
}

func NewLiveHelpRepository(db *DB) livehelp.Repository {
	return &liveHelpRepository{db: db}
}

func (repo *liveHelpRepository) CreateSession(_ context.Context, s livehelp.Session) (livehelp.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = repo.db.liveHelp.seq.next()
	s.CreatedAt = stamp(s.CreatedAt)
	s.Status = livehelp.StatusPending
	s.HelperID = nil
	s.StartedAt = nil
	s.EndedAt = nil
	s.Duration = nil
	repo.db.liveHelp.table[s.ID] = &s
	return s, nil
}

func (repo *liveHelpRepository) GetSessionByID(_ context.Context, id int) (livehelp.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.liveHelp.table[id]; ok {
		return *s, nil
	}
	return livehelp.Session{}, livehelp.ErrNotFound
}

func (repo *liveHelpRepository) QuerySessions(_ context.Context, status livehelp.Status) ([]livehelp.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sessions := make([]livehelp.Session, 0)
	for _, s := range repo.db.liveHelp.table {
		if status == "" || s.Status == status {
			sessions = append(sessions, *s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return newer(sessions[i].CreatedAt, sessions[i].ID, sessions[j].CreatedAt, sessions[j].ID)
	})
	return sessions, nil
}

func (repo *liveHelpRepository) UpdateSession(_ context.Context, id int, mut livehelp.Mutator) (livehelp.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored, ok := repo.db.liveHelp.table[id]
	if !ok {
		return livehelp.Session{}, livehelp.ErrNotFound
	}

	// mutate a copy so a failing mutator leaves the stored row untouched
	s := *stored
	completion, err := mut(&s)
	if err != nil {
		return livehelp.Session{}, err
	}
	repo.db.liveHelp.table[id] = &s

	if completion != nil {
		if s.HelperID != nil {
			if helper, ok := repo.db.user.table[*s.HelperID]; ok {
				helper.RewardPoints += completion.Points
			}
		}
		repo.db.insertActivity(completion.Activity, id)
	}
	return s, nil
}
