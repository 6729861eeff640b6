package inmemdb

import (
	"sync"
	"time"

	"github.com/TanishSen/Learn-Scope/core/activity"
	"github.com/TanishSen/Learn-Scope/core/expertise"
	"github.com/TanishSen/Learn-Scope/core/livehelp"
	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/core/subject"
	"github.com/TanishSen/Learn-Scope/core/user"
)

// sequence hands out the primary keys of one table.
type sequence int

func (seq *sequence) next() int {
	*seq++
	return int(*seq)
}

type (
	userTable struct {
		seq   sequence
		table map[int]*user.User
	}
	subjectTable struct {
		seq   sequence
		table map[int]*subject.Subject
	}
	questionTable struct {
		seq   sequence
		table map[int]*question.Question
	}
	answerTable struct {
		seq   sequence
		table map[int]*question.Answer
	}
	sessionTable struct {
		seq   sequence
		table map[int]*livehelp.Session
	}
	userSubjectTable struct {
		seq   sequence
		table map[int]*expertise.UserSubject
	}
	activityTable struct {
		seq   sequence
		table map[int]*activity.Activity
	}
)

// DB is an in-memory database.
// One lock guards every table so that operations touching several tables are a single critical section.
type DB struct {
	mutex sync.RWMutex

	user        userTable
	subject     subjectTable
	question    questionTable
	answer      answerTable
	liveHelp    sessionTable
	userSubject userSubjectTable
	activity    activityTable
}

// Open returns an empty database seeded with the default subjects.
func Open() *DB {
	db := &DB{
		user:        userTable{table: make(map[int]*user.User)},
		subject:     subjectTable{table: make(map[int]*subject.Subject)},
		question:    questionTable{table: make(map[int]*question.Question)},
		answer:      answerTable{table: make(map[int]*question.Answer)},
		liveHelp:    sessionTable{table: make(map[int]*livehelp.Session)},
		userSubject: userSubjectTable{table: make(map[int]*expertise.UserSubject)},
		activity:    activityTable{table: make(map[int]*activity.Activity)},
	}
	db.seedSubjects(subject.Defaults)
	return db
}

// seedSubjects inserts the subjects not already present by name.
func (db *DB) seedSubjects(subjects []subject.Subject) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	names := make(map[string]bool, len(db.subject.table))
	for _, sub := range db.subject.table {
		names[sub.Name] = true
	}
	now := time.Now().UTC()
	for _, sub := range subjects {
		if names[sub.Name] {
			continue
		}
		sub.ID = db.subject.seq.next()
		sub.CreatedAt = now
		db.subject.table[sub.ID] = &sub
		names[sub.Name] = true
	}
}

// insertActivity appends to the feed; the caller holds the write lock.
func (db *DB) insertActivity(act activity.Activity, entityID int) {
	act.ID = db.activity.seq.next()
	act.CreatedAt = stamp(act.CreatedAt)
	if act.EntityID == nil && entityID > 0 {
		act.EntityID = &entityID
	}
	db.activity.table[act.ID] = &act
}

// stamp returns t, or the current time when t is unset.
func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// newer orders rows by creation time, latest insertion first on ties.
func newer(ti time.Time, idi int, tj time.Time, idj int) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi > idj
}

func limitTo[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
