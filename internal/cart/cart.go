// Package cart persists the shopping cart in the local key-value store as a
// single JSON array under the "cart" key, mirroring how the catalog UI keeps
// it in browser storage.
package cart

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"catalog-dashboard/internal/domain"
	"catalog-dashboard/internal/logger"
	"catalog-dashboard/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const cartKey = "cart"

// Service owns cart reads and writes. Every mutation is a full
// read-modify-write of the stored array; last write wins, which is all this
// single-client model needs.
type Service struct {
	kv store.KV
}

// NewService creates a cart Service backed by kv.
func NewService(kv store.KV) *Service {
	return &Service{kv: kv}
}

// Items returns the current cart lines; an empty cart is an empty slice,
// never nil.
func (s *Service) Items() ([]domain.CartLine, error) {
	value, found, err := s.kv.Get(cartKey)
	if err != nil {
		return nil, fmt.Errorf("cart: reading stored cart: %w", err)
	}
	if !found {
		return []domain.CartLine{}, nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(value, &lines); err != nil {
		return nil, fmt.Errorf("cart: decoding stored cart: %w", err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

// Add puts one unit of product into the cart: the line for its id is found
// and incremented, or appended with quantity 1. The updated line is returned.
func (s *Service) Add(product domain.Product) (*domain.CartLine, error) {
	lines, err := s.Items()
	if err != nil {
		return nil, err
	}

	var updated *domain.CartLine
	for i := range lines {
		if lines[i].ID == product.ID {
			lines[i].Quantity++
			updated = &lines[i]
			break
		}
	}
	if updated == nil {
		lines = append(lines, domain.CartLine{Product: product, Quantity: 1})
		updated = &lines[len(lines)-1]
	}

	if err := s.write(lines); err != nil {
		return nil, err
	}
	logger.L().Info("added product to cart",
		zap.Int64("productId", product.ID),
		zap.Int("quantity", updated.Quantity),
	)
	line := *updated
	return &line, nil
}

// Clear empties the cart.
func (s *Service) Clear() error {
	if err := s.kv.Delete(cartKey); err != nil {
		return fmt.Errorf("cart: clearing cart: %w", err)
	}
	return nil
}

func (s *Service) write(lines []domain.CartLine) error {
	value, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("cart: encoding cart: %w", err)
	}
	if err := s.kv.Put(cartKey, value); err != nil {
		return fmt.Errorf("cart: writing cart: %w", err)
	}
	return nil
}
