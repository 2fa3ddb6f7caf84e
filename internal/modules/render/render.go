// Package render turns aggregated catalog data into storefront markup. Every
// function here is pure: no gateway access, no shared state.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
)

// NothingForSale replaces the tile region of a contract with no listings.
const NothingForSale = "There is nothing for sale."

// PriceUnit is the display unit for resale prices.
const PriceUnit = "ether"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

type resaleTileView struct {
	ResaleItemID string
	Name         string
	Image        string
	Price        string
	RawPrice     string
}

type contractView struct {
	Name    string
	Symbol  string
	Address string
	Tiles   []resaleTileView
	Empty   string
}

// PageData is the HTML shell's content.
type PageData struct {
	Network string
	Enabled bool
	Catalog template.HTML
	Owned   template.HTML
	Log     template.HTML
}

func execute(name string, data interface{}) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func resaleView(item cargo.ResaleItem) (resaleTileView, error) {
	v := resaleTileView{
		ResaleItemID: item.ResaleItemID,
		Name:         item.Metadata.Name,
		Image:        item.Metadata.Image,
		RawPrice:     string(item.Price),
	}
	if item.Price != "" {
		price, err := cargo.FromWei(item.Price, PriceUnit)
		if err != nil {
			return v, fmt.Errorf("resale item %s: %w", item.ResaleItemID, err)
		}
		v.Price = price
	}
	return v, nil
}

// ResaleTile renders one listing with its ether price and a buy button
// tagged with the item id and raw base-unit price.
func ResaleTile(item cargo.ResaleItem) (template.HTML, error) {
	v, err := resaleView(item)
	if err != nil {
		return "", err
	}
	return execute("resaleTile", v)
}

// OwnedTile renders a held token; it has no price and no button.
func OwnedTile(token cargo.OwnedToken) (template.HTML, error) {
	return execute("ownedTile", token)
}

// ContractSection renders a contract header followed by its listings.
func ContractSection(contract cargo.TokenContract, items []cargo.ResaleItem) (template.HTML, error) {
	v := contractView{
		Name:    contract.Name,
		Symbol:  contract.Symbol,
		Address: contract.TokenAddress.Hex(),
		Empty:   NothingForSale,
	}
	for _, item := range items {
		tile, err := resaleView(item)
		if err != nil {
			return "", err
		}
		v.Tiles = append(v.Tiles, tile)
	}
	return execute("contractSection", v)
}

// Catalog renders every contract section in order.
func Catalog(contracts []cargo.TokenContract, items cargo.ResaleItems) (template.HTML, error) {
	var buf bytes.Buffer
	for _, c := range contracts {
		section, err := ContractSection(c, items[c.TokenContractID])
		if err != nil {
			return "", err
		}
		buf.WriteString(string(section))
	}
	return template.HTML(buf.String()), nil
}

// OwnedTokens renders one tile per held token.
func OwnedTokens(tokens []cargo.OwnedToken) (template.HTML, error) {
	var buf bytes.Buffer
	for _, t := range tokens {
		tile, err := OwnedTile(t)
		if err != nil {
			return "", err
		}
		buf.WriteString(string(tile))
	}
	return template.HTML(buf.String()), nil
}

// Confirmation renders a transaction log line linking to link.
func Confirmation(link string) (template.HTML, error) {
	return execute("confirmation", struct{ Link string }{link})
}

// Page renders the full HTML shell.
func Page(data PageData) (template.HTML, error) {
	return execute("page", data)
}
