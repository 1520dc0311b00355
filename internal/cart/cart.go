// Package cart keeps the list of detailing packages a customer is about to
// book. The list is persisted through a Storage so it survives restarts.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StorageKey is the fixed name the cart state is persisted under.
const StorageKey = "detailing-cart-storage"

// ProfileKey is the storage key for a named cart profile. The empty profile
// is the default cart.
func ProfileKey(profile string) string {
	if profile == "" {
		return StorageKey
	}
	return StorageKey + ":" + profile
}

const saveTimeout = 5 * time.Second

// Item is one line in the cart. Prices are captured when the line is added
// and never recomputed from the catalog.
type Item struct {
	ID          string `json:"id"`
	PackageID   string `json:"packageId"`
	PackageName string `json:"packageName"`
	BasePrice   int64  `json:"basePrice"`
	VehicleType string `json:"vehicleType"`
	FinalPrice  int64  `json:"finalPrice"`
	Quantity    int    `json:"quantity"`
}

// LineTotal is FinalPrice multiplied by Quantity.
func (i Item) LineTotal() int64 {
	return i.FinalPrice * int64(i.Quantity)
}

// NewItem is an Item before the store assigns its id.
type NewItem struct {
	PackageID   string
	PackageName string
	BasePrice   int64
	VehicleType string
	FinalPrice  int64
	Quantity    int
}

// Store owns the cart state. All methods are safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	items     []Item
	lastStamp int64
	closed    bool

	storage Storage
	key     string
	logger  *zap.Logger
	now     func() time.Time

	pending chan []byte
	wg      sync.WaitGroup
}

type Option func(*Store)

// WithLogger sets the logger used to report persistence failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used to stamp item ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithKey overrides the storage key, see ProfileKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// Open hydrates a Store from storage and starts its background writer.
// A missing or unreadable saved state yields an empty cart.
func Open(ctx context.Context, storage Storage, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, errors.New("cart storage required")
	}
	s := &Store{
		storage: storage,
		key:     StorageKey,
		logger:  zap.NewNop(),
		now:     time.Now,
		pending: make(chan []byte, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := storage.Load(ctx, s.key)
	switch {
	case errors.Is(err, ErrNoState):
	case err != nil:
		return nil, fmt.Errorf("load cart: %w", err)
	default:
		items, decodeErr := Decode(raw)
		if decodeErr != nil {
			s.logger.Warn("discarding unreadable cart state", zap.String("key", s.key), zap.Error(decodeErr))
		} else {
			s.items = items
		}
	}

	s.wg.Add(1)
	go s.writeLoop()
	return s, nil
}

// AddItem appends a new line. Identical selections are never merged.
func (s *Store) AddItem(in NewItem) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}
	item := Item{
		ID:          s.nextID(in.PackageID, in.VehicleType),
		PackageID:   in.PackageID,
		PackageName: in.PackageName,
		BasePrice:   in.BasePrice,
		VehicleType: in.VehicleType,
		FinalPrice:  in.FinalPrice,
		Quantity:    qty,
	}
	s.items = append(s.items, item)
	s.persistLocked()
	return item
}

// RemoveItem drops the line with the given id. Unknown ids are ignored.
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// UpdateQuantity sets a line's quantity in place. A quantity of zero or
// less removes the line.
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(id)
		return
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			s.persistLocked()
			return
		}
	}
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persistLocked()
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len is the number of lines, not the number of units.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TotalItems sums quantities across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// TotalPrice sums FinalPrice*Quantity across all lines.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, it := range s.items {
		total += it.LineTotal()
	}
	return total
}

// Close waits for the last scheduled write to reach storage. Mutations made
// after Close are kept in memory only.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.pending)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Store) removeLocked(id string) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// nextID mirrors "<packageId>-<vehicleType>-<millis>", bumping the stamp so
// two adds in the same millisecond still get distinct ids.
func (s *Store) nextID(packageID, vehicle string) string {
	stamp := s.now().UnixMilli()
	if stamp <= s.lastStamp {
		stamp = s.lastStamp + 1
	}
	s.lastStamp = stamp
	return fmt.Sprintf("%s-%s-%d", packageID, vehicle, stamp)
}

// persistLocked hands a snapshot to the writer without waiting for it.
// Only the newest unsaved snapshot is kept.
func (s *Store) persistLocked() {
	if s.closed {
		s.logger.Warn("cart closed, change not persisted", zap.String("key", s.key))
		return
	}
	data, err := Encode(s.items)
	if err != nil {
		s.logger.Error("encode cart state", zap.Error(err))
		return
	}
	for {
		select {
		case s.pending <- data:
			return
		default:
		}
		select {
		case <-s.pending:
		default:
		}
	}
}

func (s *Store) writeLoop() {
	defer s.wg.Done()
	for data := range s.pending {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := s.storage.Save(ctx, s.key, data); err != nil {
			s.logger.Warn("persist cart state", zap.String("key", s.key), zap.Error(err))
		}
		cancel()
	}
}
