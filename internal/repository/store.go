package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PasswordHasher is the hashing dependency of UserRepository.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Repositories groups the accessors bound to one executor, either the pool
// or a single transaction.
type Repositories struct {
	Users      *UserRepository
	Tasks      *TaskRepository
	Comments   *CommentRepository
	Activities *ActivityRepository
}

type Store struct {
	db     *sqlx.DB
	hasher PasswordHasher
	now    func() time.Time
}

func NewStore(db *sqlx.DB, hasher PasswordHasher) *Store {
	return &Store{
		db:     db,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Repos returns accessors bound to the connection pool.
func (s *Store) Repos() Repositories {
	return s.bind(s.db)
}

// InTx runs fn inside a transaction and commits only if fn returns nil.
// fn must use the repositories it is given; the pool holds a single
// connection, so touching Repos() inside fn would block.
func (s *Store) InTx(ctx context.Context, fn func(Repositories) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(s.bind(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) bind(ext sqlx.ExtContext) Repositories {
	return Repositories{
		Users:      &UserRepository{db: ext, hasher: s.hasher, now: s.now},
		Tasks:      &TaskRepository{db: ext, now: s.now},
		Comments:   &CommentRepository{db: ext, now: s.now},
		Activities: &ActivityRepository{db: ext, now: s.now},
	}
}
