package repository

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkoutpay/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// MemoryCatalog serves products from memory, typically seeded from a YAML file.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[uuid.UUID]domain.Product
}

func NewMemoryCatalog(products ...domain.Product) *MemoryCatalog {
	c := &MemoryCatalog{products: make(map[uuid.UUID]domain.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *MemoryCatalog) GetProduct(_ context.Context, productID uuid.UUID) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("product[%s]: %w", productID, domain.ErrProductNotFound)
	}

	return p, nil
}

func (c *MemoryCatalog) Put(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products[p.ID] = p
}

type catalogFile struct {
	Products []struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Price string `yaml:"price"`
	} `yaml:"products"`
}

// LoadCatalogFile reads products from a YAML document of the form
//
//	products:
//	  - id: 7f1c...
//	    name: Mug
//	    price: "12.50"
func LoadCatalogFile(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	return ParseCatalog(data)
}

func ParseCatalog(data []byte) ([]domain.Product, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}

	products := make([]domain.Product, 0, len(f.Products))
	for i, raw := range f.Products {
		id, err := uuid.Parse(raw.ID)
		if err != nil {
			return nil, fmt.Errorf("products[%d].id[%s]: %w", i, raw.ID, err)
		}

		price, err := decimal.NewFromString(raw.Price)
		if err != nil {
			return nil, fmt.Errorf("products[%d].price[%s]: %w", i, raw.Price, err)
		}

		p := domain.Product{ID: id, Name: raw.Name, Price: price}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("products[%d]: %w", i, err)
		}

		products = append(products, p)
	}

	return products, nil
}
