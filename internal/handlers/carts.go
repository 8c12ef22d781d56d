package handlers

import (
	"sync"

	"github.com/Utkkku/nazenin/internal/models"
)

type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutProcessing CheckoutState = "processing"
	CheckoutSuccess    CheckoutState = "success"
)

// CartStore keeps one cart and one checkout state per shopper session.
// Carts are ephemeral view state, not part of the persisted collections.
type CartStore struct {
	mu     sync.Mutex
	carts  map[string][]models.CartItem
	status map[string]CheckoutState
}

func NewCartStore() *CartStore {
	return &CartStore{
		carts:  make(map[string][]models.CartItem),
		status: make(map[string]CheckoutState),
	}
}

func (s *CartStore) Get(id string) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[id]
	out := make([]models.CartItem, len(cart))
	copy(out, cart)
	return out
}

func (s *CartStore) Set(id string, cart []models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[id] = cart
}

func (s *CartStore) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
}

func (s *CartStore) Status(id string) CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.status[id]; ok {
		return st
	}
	return CheckoutIdle
}

func (s *CartStore) SetStatus(id string, st CheckoutState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[id] = st
}
