package ledger

import (
	"crypto/ed25519"
	"sort"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/woofi-pets/donation-server/pkg/solana/donation"
	sync_util "github.com/woofi-pets/donation-server/pkg/sync"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrUndeclaredAccount = errors.New("account not declared by unit of work")
)

const (
	lockStripes = 1024

	// Rent parameters for the rent-exempt minimum balance calculation.
	lamportsPerByteYear    = 3480
	rentExemptionYears     = 2
	accountStorageOverhead = 128
)

// MinimumBalanceForRentExemption returns the minimum lamport balance an
// account with the given data size must hold to persist on the ledger.
func MinimumBalanceForRentExemption(dataSize uint64) uint64 {
	return (accountStorageOverhead + dataSize) * lamportsPerByteYear * rentExemptionYears
}

// Account is the ledger's view of a single account: a native balance, a
// program owner, and opaque program-managed data.
type Account struct {
	Lamports uint64
	Owner    ed25519.PublicKey
	Data     []byte
}

func (a *Account) Clone() *Account {
	cloned := &Account{
		Lamports: a.Lamports,
		Owner:    make(ed25519.PublicKey, len(a.Owner)),
	}
	copy(cloned.Owner, a.Owner)
	if a.Data != nil {
		cloned.Data = make([]byte, len(a.Data))
		copy(cloned.Data, a.Data)
	}
	return cloned
}

// Ledger is an in-memory account table that executes instructions as
// serializable, all-or-nothing units of work.
//
// Units that declare disjoint account sets may execute concurrently.
// Units touching a common account are serialized against each other, so
// two donations against the same record never interleave.
type Ledger struct {
	log     *logrus.Entry
	stripes *sync_util.StripedLock

	tableMu  sync.RWMutex
	accounts map[string]*Account

	clock func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the ledger's time source.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		log:      logrus.StandardLogger().WithField("type", "donation/ledger"),
		stripes:  sync_util.NewStripedLock(lockStripes),
		accounts: make(map[string]*Account),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetAccount returns a copy of the account at the given address.
func (l *Ledger) GetAccount(address ed25519.PublicKey) (*Account, bool) {
	l.tableMu.RLock()
	defer l.tableMu.RUnlock()

	account, ok := l.accounts[string(address)]
	if !ok {
		return nil, false
	}
	return account.Clone(), true
}

// SetAccount installs an account directly, bypassing unit-of-work
// semantics. Intended for genesis and test setup.
func (l *Ledger) SetAccount(address ed25519.PublicKey, account *Account) {
	l.tableMu.Lock()
	defer l.tableMu.Unlock()

	l.accounts[string(address)] = account.Clone()
}

// CreateNativeAccount funds a system-owned account with the given balance.
func (l *Ledger) CreateNativeAccount(address ed25519.PublicKey, lamports uint64) {
	l.SetAccount(address, &Account{
		Lamports: lamports,
		Owner:    donation.SYSTEM_PROGRAM_ID,
	})
}

// ExecuteInUnit runs fn against a staged view of the declared accounts.
// The staged writes are committed only if fn returns nil; any error
// discards the unit in its entirety.
//
// fn may only touch accounts in declared. Reads or writes outside the
// declared set fail with ErrUndeclaredAccount, which keeps the lock
// acquisition here sound.
func (l *Ledger) ExecuteInUnit(declared []ed25519.PublicKey, fn func(u *Unit) error) error {
	locks := l.acquireAll(declared)
	defer func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}()

	u := &Unit{
		ledger:   l,
		staged:   make(map[string]*Account),
		declared: make(map[string]struct{}, len(declared)),
		now:      l.clock(),
	}
	for _, address := range declared {
		u.declared[string(address)] = struct{}{}
	}

	if err := fn(u); err != nil {
		l.log.WithError(err).Debug("unit of work discarded")
		return err
	}

	l.tableMu.Lock()
	defer l.tableMu.Unlock()
	for address, account := range u.staged {
		l.accounts[address] = account
	}
	return nil
}

// acquireAll locks the stripes covering the declared accounts in a
// globally consistent order to avoid deadlock between units.
func (l *Ledger) acquireAll(declared []ed25519.PublicKey) []*sync.RWMutex {
	unique := make(map[*sync.RWMutex]struct{})
	for _, address := range declared {
		unique[l.stripes.Get(address)] = struct{}{}
	}

	locks := make([]*sync.RWMutex, 0, len(unique))
	for mu := range unique {
		locks = append(locks, mu)
	}
	sort.Slice(locks, func(i, j int) bool {
		return uintptr(unsafe.Pointer(locks[i])) < uintptr(unsafe.Pointer(locks[j]))
	})

	for _, mu := range locks {
		mu.Lock()
	}
	return locks
}

// Unit is a single staged unit of work over a ledger.
type Unit struct {
	ledger   *Ledger
	staged   map[string]*Account
	declared map[string]struct{}
	now      time.Time
}

// Timestamp returns the unit's fixed execution time.
func (u *Unit) Timestamp() int64 {
	return u.now.Unix()
}

// GetAccount returns a mutable staged copy of the account.
func (u *Unit) GetAccount(address ed25519.PublicKey) (*Account, error) {
	if _, ok := u.declared[string(address)]; !ok {
		return nil, ErrUndeclaredAccount
	}

	if staged, ok := u.staged[string(address)]; ok {
		return staged.Clone(), nil
	}

	u.ledger.tableMu.RLock()
	defer u.ledger.tableMu.RUnlock()

	base, ok := u.ledger.accounts[string(address)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return base.Clone(), nil
}

// PutAccount stages an account write. The write is not visible outside
// the unit until the unit commits.
func (u *Unit) PutAccount(address ed25519.PublicKey, account *Account) error {
	if _, ok := u.declared[string(address)]; !ok {
		return ErrUndeclaredAccount
	}

	u.staged[string(address)] = account.Clone()
	return nil
}
