package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"DayTrader/internal/model"
)

// ErrUnknownUser is returned when an operation needs an existing account.
var ErrUnknownUser = errors.New("unknown user")

// Store is the file-backed ledger. Every call reloads the file and every
// mutation rewrites it in full; the mutex only serialises callers inside
// this process.
type Store struct {
	mu              sync.Mutex
	filePath        string
	startingBalance float64
	log             *zap.Logger
	now             func() time.Time
}

// NewStore creates the ledger file (and its directory) if needed.
func NewStore(filePath string, startingBalance float64, logger *zap.Logger) (*Store, error) {
	if startingBalance <= 0 {
		return nil, fmt.Errorf("starting balance must be positive, got %v", startingBalance)
	}
	if err := ensureFile(filePath); err != nil {
		return nil, fmt.Errorf("init ledger file: %w", err)
	}
	return &Store{
		filePath:        filePath,
		startingBalance: startingBalance,
		log:             logger,
		now:             time.Now,
	}, nil
}

// StartingBalance is the cash a new or reset account receives.
func (s *Store) StartingBalance() float64 { return s.startingBalance }

// Fetch returns the user's account, creating it on first access and
// applying the broke-reset rule.
func (s *Store) Fetch(user model.User) (model.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.load()
	if err != nil {
		return model.UserAccount{}, err
	}
	acct, changed := s.ensure(ledger, user)
	if changed {
		ledger[user.ID] = acct
		if err := s.save(ledger); err != nil {
			return model.UserAccount{}, err
		}
	}
	return acct.Clone(), nil
}

// Update runs fn against the user's account and persists the result.
// If fn fails the account is left as Fetch would have left it.
func (s *Store) Update(user model.User, fn func(acct *model.UserAccount) error) (model.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.load()
	if err != nil {
		return model.UserAccount{}, err
	}
	acct, changed := s.ensure(ledger, user)

	next := acct.Clone()
	if err := fn(&next); err != nil {
		if changed {
			ledger[user.ID] = acct
			if serr := s.save(ledger); serr != nil {
				s.log.Error("save ledger after rejected update", zap.String("user", user.ID), zap.Error(serr))
			}
		}
		return acct.Clone(), err
	}

	next.UpdatedAt = s.now()
	ledger[user.ID] = next
	if err := s.save(ledger); err != nil {
		return model.UserAccount{}, err
	}
	return next.Clone(), nil
}

// Save replaces the stored account for userID.
func (s *Store) Save(userID string, acct model.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.load()
	if err != nil {
		return err
	}
	acct = acct.Clone()
	acct.UpdatedAt = s.now()
	ledger[userID] = acct
	return s.save(ledger)
}

// Get returns a stored account without creating one.
func (s *Store) Get(userID string) (model.UserAccount, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.load()
	if err != nil {
		return model.UserAccount{}, false, err
	}
	acct, ok := ledger[userID]
	if !ok {
		return model.UserAccount{}, false, nil
	}
	return acct.Clone(), true, nil
}

// Lookup finds an account by username, case-insensitively.
func (s *Store) Lookup(username string) (model.User, bool, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return model.User{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.load()
	if err != nil {
		return model.User{}, false, err
	}
	for id, acct := range ledger {
		if strings.EqualFold(acct.Username, username) {
			return model.User{ID: id, Username: acct.Username}, true, nil
		}
	}
	return model.User{}, false, nil
}

// Accounts returns a copy of the whole ledger.
func (s *Store) Accounts() (model.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make(model.Ledger, len(ledger))
	for id, acct := range ledger {
		out[id] = acct.Clone()
	}
	return out, nil
}

// Reset puts an existing account back to the starting balance with no holdings.
func (s *Store) Reset(userID string) (model.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.load()
	if err != nil {
		return model.UserAccount{}, err
	}
	acct, ok := ledger[userID]
	if !ok {
		return model.UserAccount{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	acct.Balance = s.startingBalance
	acct.Holdings = model.Holdings{}
	acct.UpdatedAt = s.now()
	ledger[userID] = acct
	if err := s.save(ledger); err != nil {
		return model.UserAccount{}, err
	}
	s.log.Info("account reset", zap.String("user", userID))
	return acct.Clone(), nil
}

// ensure creates the account or applies the reset rule. Reports whether anything changed.
func (s *Store) ensure(ledger model.Ledger, user model.User) (model.UserAccount, bool) {
	acct, ok := ledger[user.ID]
	if !ok {
		s.log.Info("new account", zap.String("user", user.ID), zap.Float64("balance", s.startingBalance))
		return model.UserAccount{
			Username:  user.Username,
			Balance:   s.startingBalance,
			Holdings:  model.Holdings{},
			UpdatedAt: s.now(),
		}, true
	}

	changed := false
	if acct.Holdings == nil {
		acct.Holdings = model.Holdings{}
	}
	if user.Username != "" && acct.Username != user.Username {
		acct.Username = user.Username
		changed = true
	}
	if acct.Balance <= 0 && len(acct.Holdings) == 0 {
		s.log.Info("broke account reset",
			zap.String("user", user.ID),
			zap.Float64("old_balance", acct.Balance),
			zap.Float64("balance", s.startingBalance))
		acct.Balance = s.startingBalance
		acct.UpdatedAt = s.now()
		changed = true
	}
	return acct, changed
}

func (s *Store) load() (model.Ledger, error) {
	ledger, err := LoadLedger(s.filePath)
	if errors.Is(err, ErrCorrupt) {
		dst, qerr := quarantine(s.filePath, s.now())
		if qerr != nil {
			return nil, fmt.Errorf("quarantine ledger: %w", qerr)
		}
		s.log.Warn("ledger unreadable, starting from empty", zap.String("backup", dst), zap.Error(err))
		return model.Ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return ledger, nil
}

func (s *Store) save(ledger model.Ledger) error {
	if err := SaveLedger(s.filePath, ledger); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}
