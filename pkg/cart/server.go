package cart

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/matst80/slask-storefront/pkg/common"
	"github.com/matst80/slask-storefront/pkg/types"
)

// CartServer exposes the session cart over the storefront api. The cart is
// identified by a cookie, a missing cookie starts a fresh cart.
type CartServer struct {
	Storage CartStorage
}

func handleCartCookie(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie("cartid")
	if err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     "cartid",
		Value:    id,
		Path:     "/",
		HttpOnly: true,
	})
	return id
}

func (s *CartServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/cart", common.JsonHandler(s.GetCart))
	mux.HandleFunc("POST /api/cart/sync", common.JsonHandler(s.SyncCart))
	mux.HandleFunc("POST /api/cart/items", common.JsonHandler(s.AddItem))
	mux.HandleFunc("PATCH /api/cart/items/{id}", common.JsonHandler(s.UpdateItem))
	mux.HandleFunc("DELETE /api/cart/items/{id}", common.JsonHandler(s.RemoveItem))
	mux.HandleFunc("OPTIONS /api/cart/", common.RespondToOptions)
}

func (s *CartServer) GetCart(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	id := handleCartCookie(w, r)
	cart, err := s.Storage.GetCart(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	return enc.Encode(cart)
}

// SyncCart replaces the whole item list, the client owns the merge.
func (s *CartServer) SyncCart(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	id := handleCartCookie(w, r)
	payload := struct {
		Items []CartItem `json:"items"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}
	cart := &Cart{Id: id, Items: payload.Items}
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	if err := s.Storage.SaveCart(r.Context(), cart); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	return enc.Encode(cart)
}

func (s *CartServer) AddItem(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	id := handleCartCookie(w, r)
	payload := struct {
		Item     types.Product `json:"item"`
		Quantity int           `json:"quantity"`
	}{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}
	if payload.Item.Id == "" {
		http.Error(w, "item id required", http.StatusBadRequest)
		return nil
	}
	cart, err := s.Storage.GetCart(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	item := cart.AddProduct(&payload.Item, payload.Quantity)
	if err := s.Storage.SaveCart(r.Context(), cart); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	return enc.Encode(map[string]any{"item": item, "cart": cart})
}

func (s *CartServer) UpdateItem(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	id := handleCartCookie(w, r)
	itemId := r.PathValue("id")
	updates := struct {
		Quantity *int `json:"quantity"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return err
	}
	cart, err := s.Storage.GetCart(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	i := cart.findItem(itemId)
	if i < 0 {
		http.Error(w, "item not found", http.StatusNotFound)
		return nil
	}
	if updates.Quantity != nil {
		if *updates.Quantity < 1 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		} else {
			cart.Items[i].Quantity = *updates.Quantity
		}
	}
	if err := s.Storage.SaveCart(r.Context(), cart); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	return enc.Encode(cart)
}

func (s *CartServer) RemoveItem(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	id := handleCartCookie(w, r)
	itemId := r.PathValue("id")
	cart, err := s.Storage.GetCart(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	i := cart.findItem(itemId)
	if i < 0 {
		http.Error(w, "item not found", http.StatusNotFound)
		return nil
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	if err := s.Storage.SaveCart(r.Context(), cart); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	return enc.Encode(cart)
}
