package overrides

import (
	"context"
	"log/slog"
	"sync"

	"github.com/night-owl-018/seapay-certifier/constants"
	"github.com/night-owl-018/seapay-certifier/internal/common"
	"github.com/night-owl-018/seapay-certifier/internal/repository"
)

// Service persists reviewer corrections and serializes writes per member so
// concurrent submissions for the same sailor cannot lose updates.
type Service struct {
	repo   repository.OverrideRepository
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(repo repository.OverrideRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, locks: make(map[string]*sync.Mutex)}
}

func (s *Service) memberLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Save upserts a correction. status must be "valid" or "invalid"; a second
// save for the same (sheet, event index) replaces the first.
func (s *Service) Save(ctx context.Context, rec repository.OverrideRecord, status string) error {
	switch status {
	case constants.StatusValid:
		rec.MakeValid = true
	case constants.StatusInvalid:
		rec.MakeValid = false
	default:
		return common.NewAppError("INVALID_INPUT", "status must be valid or invalid", common.ErrInvalidInput)
	}

	l := s.memberLock(rec.MemberKey)
	l.Lock()
	defer l.Unlock()

	if err := s.repo.Upsert(ctx, rec); err != nil {
		return err
	}
	s.logger.Info("override saved",
		"member", rec.MemberKey,
		"sheet", rec.SheetFile,
		"index", rec.EventIndex,
		"make_valid", rec.MakeValid)
	return nil
}

// Clear removes every correction for a member. Clearing a member with no
// overrides is a no-op.
func (s *Service) Clear(ctx context.Context, memberKey string) (int64, error) {
	l := s.memberLock(memberKey)
	l.Lock()
	defer l.Unlock()

	n, err := s.repo.ClearMember(ctx, memberKey)
	if err != nil {
		return 0, err
	}
	s.logger.Info("overrides cleared", "member", memberKey, "removed", n)
	return n, nil
}

// List returns all stored corrections for a member.
func (s *Service) List(ctx context.Context, memberKey string) ([]repository.OverrideRecord, error) {
	return s.repo.ListForMember(ctx, memberKey)
}
