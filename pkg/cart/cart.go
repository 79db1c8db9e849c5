package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/matst80/slask-storefront/pkg/storage"
	"github.com/matst80/slask-storefront/pkg/types"
)

type CartItem struct {
	Id       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Image    string  `json:"image,omitempty"`
	Quantity int     `json:"quantity"`
}

type Cart struct {
	Id         string     `json:"id"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"total_price"`
}

func (c *Cart) recalculate() {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.TotalPrice = total
}

func (c *Cart) findItem(id string) int {
	for i, item := range c.Items {
		if item.Id == id {
			return i
		}
	}
	return -1
}

type CartStorage interface {
	GetCart(ctx context.Context, id string) (*Cart, error)
	SaveCart(ctx context.Context, cart *Cart) error
}

// KvCartStorage keeps one kv entry per cart on the shared KeyValueStore.
type KvCartStorage struct {
	kv storage.KeyValueStore
}

func NewKvCartStorage(kv storage.KeyValueStore) *KvCartStorage {
	return &KvCartStorage{kv: kv}
}

func cartKey(id string) string {
	return "storefront_cart_" + id
}

func (s *KvCartStorage) GetCart(ctx context.Context, id string) (*Cart, error) {
	data, err := s.kv.Get(ctx, cartKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return &Cart{Id: id, Items: []CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	cart := &Cart{}
	if err := sonic.Unmarshal([]byte(data), cart); err != nil {
		return nil, fmt.Errorf("cart %s unreadable: %w", id, err)
	}
	return cart, nil
}

func (s *KvCartStorage) SaveCart(ctx context.Context, cart *Cart) error {
	cart.recalculate()
	data, err := sonic.Marshal(cart)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, cartKey(cart.Id), string(data))
}

// AddProduct puts a catalog product into the cart, merging quantities when
// it is already present.
func (c *Cart) AddProduct(p *types.Product, quantity int) *CartItem {
	if quantity < 1 {
		quantity = 1
	}
	if i := c.findItem(p.Id); i >= 0 {
		c.Items[i].Quantity += quantity
		return &c.Items[i]
	}
	c.Items = append(c.Items, CartItem{
		Id:       p.Id,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: quantity,
	})
	return &c.Items[len(c.Items)-1]
}
