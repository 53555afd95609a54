package tiny

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ID is an upstream-assigned identifier. Tiny encodes ids sometimes as
// JSON numbers and sometimes as strings, depending on the endpoint.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*id = ID(n)
	return nil
}

func (id ID) Int64() int64 {
	return int64(id)
}

// Number is a flexible numeric field. Tiny responses mix plain JSON
// numbers, quoted numbers and comma decimal separators ("12,5").
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	v, ok := coerceNumber(b)
	if !ok {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

func (n Number) Float64() float64 {
	return float64(n)
}

// coerceNumber is the single place where duck-typed numeric fields are
// normalized. Returns false for null, empty strings and anything that
// is not numeric after comma normalization.
func coerceNumber(raw []byte) (float64, bool) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Product is the registration record shared by the search listing and
// the product-detail endpoint. The listing omits some of these fields;
// the detail response fills them in. The raw body is retained so stock
// quantity fields can be probed by name later.
type Product struct {
	Id           ID     `json:"id"`
	Code         string `json:"codigo"`
	Name         string `json:"nome"`
	Gtin         string `json:"gtin"`
	Unit         string `json:"unidade"`
	Price        Number `json:"preco"`
	PromoPrice   Number `json:"preco_promocional"`
	CostPrice    Number `json:"preco_custo"`
	AvgCostPrice Number `json:"preco_custo_medio"`
	Location     string `json:"localizacao"`
	Status       string `json:"situacao"`
	CreatedAt    string `json:"data_criacao"`

	raw map[string]json.RawMessage
}

func (p *Product) UnmarshalJSON(b []byte) error {
	type alias Product
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*p = Product(a)
	// Best effort: the raw map only feeds TotalStock probing.
	_ = json.Unmarshal(b, &p.raw)
	return nil
}

// Raw exposes the undecoded response body of the product, keyed by
// field name, for persistence alongside the normalized row.
func (p *Product) Raw() map[string]json.RawMessage {
	return p.raw
}

// TotalStock probes the candidate quantity fields in priority order.
// The first present, numeric-coercible value wins. Which field carries
// the stock balance varies by account and API version, so the list is
// caller-supplied configuration, not a constant.
func (p *Product) TotalStock(priority []string) (float64, bool) {
	for _, field := range priority {
		raw, ok := p.raw[field]
		if !ok {
			continue
		}
		if v, ok := coerceNumber(raw); ok {
			return v, true
		}
	}
	return 0, false
}

// SearchPage is one page of the catalog-search endpoint.
type SearchPage struct {
	Page       int
	TotalPages int
	Products   []Product
}

// ChangedProduct is one entry of the changed-products feed.
type ChangedProduct struct {
	Id        ID     `json:"id"`
	ChangedAt string `json:"data_alteracao"`
}

// StockChange is one entry of the changed-stock feed.
type StockChange struct {
	Id        ID     `json:"id"`
	ChangedAt string `json:"data_alteracao"`
	Balance   Number `json:"saldo"`
}

// StockChangePage is one page of the changed-stock feed.
type StockChangePage struct {
	Page       int
	TotalPages int
	Items      []StockChange
}

// Deposit is a per-location stock balance.
type Deposit struct {
	Id      ID     `json:"id"`
	Name    string `json:"nome"`
	Company string `json:"empresa"`
	Balance Number `json:"saldo"`
}

// Code derives the stable deposit key: the upstream id when present,
// otherwise the display name, otherwise "default".
func (d Deposit) Code() string {
	if d.Id != 0 {
		return strconv.FormatInt(d.Id.Int64(), 10)
	}
	if d.Name != "" {
		return d.Name
	}
	return "default"
}

// StockDetail is the per-product stock snapshot with its per-deposit
// breakdown.
type StockDetail struct {
	Id        ID        `json:"id"`
	Name      string    `json:"nome"`
	Balance   Number    `json:"saldo"`
	Reserved  Number    `json:"saldoReservado"`
	ChangedAt string    `json:"data_alteracao"`
	Deposits  []Deposit `json:"-"`
}

func (s *StockDetail) UnmarshalJSON(b []byte) error {
	type alias StockDetail
	var a struct {
		alias
		Deposits []struct {
			Deposit Deposit `json:"deposito"`
		} `json:"depositos"`
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*s = StockDetail(a.alias)
	for _, w := range a.Deposits {
		s.Deposits = append(s.Deposits, w.Deposit)
	}
	return nil
}

// TotalBalance sums quantities across all returned deposits. When the
// response carries no per-deposit breakdown the aggregate balance field
// is used instead.
func (s *StockDetail) TotalBalance() float64 {
	if len(s.Deposits) == 0 {
		return s.Balance.Float64()
	}
	var total float64
	for _, d := range s.Deposits {
		total += d.Balance.Float64()
	}
	return total
}
