package types

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// Product is the canonical catalog entity. Instances are produced either by
// normalizing a RawProduct from the remote api or by applying overrides to a
// local baseline product. LocalId is only set for local-origin products and
// refers to the baseline id used by the override and deleted-id stores.
type Product struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Category   string    `json:"category,omitempty"`
	Brand      string    `json:"brand,omitempty"`
	Features   []string  `json:"features,omitempty"`
	Rating     float64   `json:"rating,omitempty"`
	Image      string    `json:"image,omitempty"`
	IsVerified bool      `json:"isVerified,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
	Stock      int       `json:"stock,omitempty"`
	Origin     Origin    `json:"origin,omitempty"`
	LocalId    string    `json:"localId,omitempty"`
}

// DedupKey identifies "the same product" across the remote and local sources.
func (p *Product) DedupKey() string {
	return strings.ToLower(p.Name) + "|" + strings.ToLower(p.Brand)
}

// IsValid reports whether the record is usable by the filter/sort pipeline.
// Records failing this are dropped at the merge boundary.
func (p *Product) IsValid() bool {
	return p.Name != "" && p.Price >= 0
}

var absoluteUrl = regexp.MustCompile(`(?i)^https?://`)

// ResolveImagePath keeps absolute urls as-is and roots relative paths.
func ResolveImagePath(img string) string {
	if img == "" {
		return ""
	}
	if absoluteUrl.MatchString(img) {
		return img
	}
	if strings.HasPrefix(img, "/") {
		return img
	}
	return "/" + img
}

// FlexId accepts a string or numeric json id, some upstream feeds send both.
type FlexId string

func (f *FlexId) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexId(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexId(n.String())
	return nil
}

// RawProduct is the loose record shape returned by the remote source. Extra
// fields are tolerated and ignored, only the attributes below are read.
type RawProduct struct {
	Id         FlexId   `json:"id"`
	AltId      FlexId   `json:"_id"`
	Name       string   `json:"name"`
	Price      *float64 `json:"price"`
	Category   string   `json:"category"`
	Brand      string   `json:"brand"`
	Features   []string `json:"features"`
	Rating     *float64 `json:"rating"`
	Image      string   `json:"image"`
	IsVerified bool     `json:"isVerified"`
	CreatedAt  string   `json:"createdAt"`
	Stock      *int     `json:"stock"`
}

// Normalize validates and defaults a raw record into a canonical Product.
// Records without a usable name or price are rejected. Absent rating is 0,
// never the display fallback the storefront renders.
func (r *RawProduct) Normalize() (Product, bool) {
	id := string(r.Id)
	if id == "" {
		id = string(r.AltId)
	}
	if id == "" || r.Name == "" || r.Price == nil || *r.Price < 0 {
		return Product{}, false
	}
	p := Product{
		Id:         id,
		Name:       r.Name,
		Price:      *r.Price,
		Category:   r.Category,
		Brand:      r.Brand,
		Features:   r.Features,
		Image:      ResolveImagePath(r.Image),
		IsVerified: r.IsVerified,
		Origin:     OriginRemote,
	}
	if r.Rating != nil && *r.Rating > 0 {
		p.Rating = *r.Rating
	}
	if r.Stock != nil && *r.Stock > 0 {
		p.Stock = *r.Stock
	}
	if r.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			p.CreatedAt = t
		} else if ms, err := strconv.ParseInt(r.CreatedAt, 10, 64); err == nil {
			p.CreatedAt = time.UnixMilli(ms)
		}
	}
	return p, true
}

// NormalizeAll drops records that fail validation instead of failing the batch.
func NormalizeAll(raw []RawProduct) []Product {
	out := make([]Product, 0, len(raw))
	for i := range raw {
		if p, ok := raw[i].Normalize(); ok {
			out = append(out, p)
		}
	}
	return out
}

// ProductPatch is a partial product, an admin edit stored on top of a local
// baseline product. Nil fields leave the baseline value untouched.
type ProductPatch struct {
	Name       *string   `json:"name,omitempty"`
	Price      *float64  `json:"price,omitempty"`
	Category   *string   `json:"category,omitempty"`
	Brand      *string   `json:"brand,omitempty"`
	Features   *[]string `json:"features,omitempty"`
	Rating     *float64  `json:"rating,omitempty"`
	Image      *string   `json:"image,omitempty"`
	IsVerified *bool     `json:"isVerified,omitempty"`
	Stock      *int      `json:"stock,omitempty"`
}

func (patch *ProductPatch) ApplyTo(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Features != nil {
		p.Features = *patch.Features
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.Image != nil {
		p.Image = ResolveImagePath(*patch.Image)
	}
	if patch.IsVerified != nil {
		p.IsVerified = *patch.IsVerified
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
}

// IsEmpty reports a patch with no set fields, saving one is a no-op the admin
// api rejects.
func (patch *ProductPatch) IsEmpty() bool {
	return patch.Name == nil && patch.Price == nil && patch.Category == nil &&
		patch.Brand == nil && patch.Features == nil && patch.Rating == nil &&
		patch.Image == nil && patch.IsVerified == nil && patch.Stock == nil
}
