package stub

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
)

// Demo returns a gateway seeded with two vendors, three contracts and a few
// tokens owned by owner, for running the storefront without a live gateway.
func Demo(crateID string, owner common.Address) *Gateway {
	g := NewGateway()

	sketches := cargo.TokenContract{
		TokenContractID: "1",
		TokenAddress:    common.HexToAddress("0x1f2a6c1e5ab1d1a5c1e2b3c4d5e6f708192a3b4c"),
		Name:            "Pixel Sketches",
		Symbol:          "PXS",
	}
	studies := cargo.TokenContract{
		TokenContractID: "2",
		TokenAddress:    common.HexToAddress("0x2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e"),
		Name:            "Colour Studies",
		Symbol:          "CLR",
	}
	glitch := cargo.TokenContract{
		TokenContractID: "3",
		TokenAddress:    common.HexToAddress("0x3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f"),
		Name:            "Glitch Garden",
		Symbol:          "GLG",
	}

	g.AddContract(crateID, "vendor-1", sketches)
	g.AddContract(crateID, "vendor-1", studies)
	g.AddContract(crateID, "vendor-2", glitch)

	g.AddResaleItem(cargo.ResaleItem{
		ResaleItemID:    "11",
		Price:           "250000000000000000",
		Metadata:        cargo.Metadata{Name: "Sketch #4", Image: "/assets/placeholder.svg"},
		TokenContractID: sketches.TokenContractID,
	})
	g.AddResaleItem(cargo.ResaleItem{
		ResaleItemID:    "12",
		Price:           "1000000000000000000",
		Metadata:        cargo.Metadata{Name: "Sketch #9", Image: "/assets/placeholder.svg"},
		TokenContractID: sketches.TokenContractID,
	})
	g.AddResaleItem(cargo.ResaleItem{
		ResaleItemID:    "31",
		Price:           "1500000000000000000",
		Metadata:        cargo.Metadata{Name: "Bloom", Image: "/assets/placeholder.svg"},
		TokenContractID: glitch.TokenContractID,
	})

	g.AddOwnedToken(owner, studies, "7", cargo.Metadata{Name: "Study in Blue", Image: "/assets/placeholder.svg"})
	g.AddOwnedToken(owner, glitch, "2", cargo.Metadata{Name: "Static", Image: "/assets/placeholder.svg"})
	g.AddOwnedToken(owner, glitch, "5", cargo.Metadata{Name: "Overgrowth", Image: "/assets/placeholder.svg"})

	return g
}
