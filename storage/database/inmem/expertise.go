package inmemdb

import (
	"context"
	"sort"

	"github.com/TanishSen/Learn-Scope/core/expertise"
)

type userSubjectRepository struct {
	db *DB
}

func NewUserSubjectRepository(db *DB) expertise.Repository {
	return &userSubjectRepository{db: db}
}

func (repo *userSubjectRepository) CreateUserSubject(_ context.Context, us expertise.UserSubject) (expertise.UserSubject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.userSubject.table {
		if other.UserID == us.UserID && other.SubjectID == us.SubjectID {
			return expertise.UserSubject{}, expertise.ErrAlreadyDeclared
		}
	}
	us.ID = repo.db.userSubject.seq.next()
	us.CreatedAt = stamp(us.CreatedAt)
	repo.db.userSubject.table[us.ID] = &us
	return us, nil
}

func (repo *userSubjectRepository) QueryUserSubjects(_ context.Context, userID int) ([]expertise.UserSubject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	uss := make([]expertise.UserSubject, 0)
	for _, us := range repo.db.userSubject.table {
		if us.UserID == userID {
			uss = append(uss, *us)
		}
	}
	sort.Slice(uss, func(i, j int) bool { return newer(uss[i].CreatedAt, uss[i].ID, uss[j].CreatedAt, uss[j].ID) })
	return uss, nil
}
