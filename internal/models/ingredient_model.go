package models

import "time"

// Unit is the measurement unit of an ingredient quantity.
type Unit string

const (
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLitre      Unit = "L"
	UnitMillilitre Unit = "mL"
	UnitPieces     Unit = "pieces"
	UnitPack       Unit = "pack"
)

// Units lists every accepted unit in the order forms present them.
var Units = []Unit{UnitKilogram, UnitGram, UnitLitre, UnitMillilitre, UnitPieces, UnitPack}

// Valid reports whether u is one of the known units.
func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// Ingredient is a single pantry item stored under users/{uid}/ingredients.
type Ingredient struct {
	ID         string    `json:"id" firestore:"-"` // Document ID
	Name       string    `json:"name" firestore:"name"`
	Quantity   float64   `json:"quantity" firestore:"qty"`
	Unit       Unit      `json:"unit" firestore:"unit"`
	Price      float64   `json:"price" firestore:"price"`           // Total price paid, 0 when unknown
	ExpiryDate string    `json:"expiryDate" firestore:"expiryDate"` // YYYY-MM-DD, may be empty on legacy records
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
