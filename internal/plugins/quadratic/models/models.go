// Package models holds the quadratic plugin's registrar and the transform it
// applies to its input weight.
package models

import (
	"fmt"
	"math"
	"math/big"

	vwmodels "voterweight/internal/voterweight/models"
	"voterweight/pkg/codec"
	"voterweight/pkg/domain"
)

// Coefficients of a·√x + b·x + c.
type Coefficients struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// DefaultCoefficients is plain square root voting.
func DefaultCoefficients() Coefficients {
	return Coefficients{A: 1}
}

// IsFinite reports whether every coefficient is a real number.
func (c Coefficients) IsFinite() bool {
	for _, v := range []float64{c.A, c.B, c.C} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// sqrtPrec is the mantissa width of the square root term. At this width
// rounding stays far below the distance between √x and the nearest integer
// for any uint64 x, so truncation is exact.
const sqrtPrec = 256

// Transform applies the coefficients to x and truncates towards zero. The
// linear part is computed exactly. Results below zero clamp to 0 and results
// above the uint64 range saturate at math.MaxUint64.
func (c Coefficients) Transform(x uint64) uint64 {
	if !c.IsFinite() {
		fx := float64(x)
		return saturate(c.A*math.Sqrt(fx) + c.B*fx + c.C)
	}
	bx := new(big.Int).SetUint64(x)
	v := new(big.Rat).SetInt(bx)
	v.Mul(v, new(big.Rat).SetFloat64(c.B))
	v.Add(v, new(big.Rat).SetFloat64(c.C))
	if c.A != 0 {
		root := new(big.Float).SetPrec(sqrtPrec).SetInt(bx)
		root.Sqrt(root)
		root.Mul(root, new(big.Float).SetPrec(sqrtPrec).SetFloat64(c.A))
		term, _ := root.Rat(nil)
		v.Add(v, term)
	}
	if v.Sign() <= 0 {
		return 0
	}
	q := new(big.Int).Quo(v.Num(), v.Denom())
	if !q.IsUint64() {
		return math.MaxUint64
	}
	return q.Uint64()
}

func saturate(v float64) uint64 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(v)
}

// Registrar binds a realm's governing mint to one set of coefficients.
type Registrar struct {
	vwmodels.RegistrarIdentity
	Coefficients Coefficients
	Reserved     [128]byte
}

func (r *Registrar) Encode() []byte {
	w := codec.NewWriter(codec.DiscriminatorSize + 4*domain.PubkeySize + 1 + 3*8 + len(r.Reserved))
	r.RegistrarIdentity.EncodeTo(w)
	w.F64(r.Coefficients.A)
	w.F64(r.Coefficients.B)
	w.F64(r.Coefficients.C)
	w.Raw(r.Reserved[:])
	return w.Bytes()
}

func DecodeRegistrar(data []byte) (*Registrar, error) {
	r := codec.NewReader(data)
	reg := &Registrar{RegistrarIdentity: vwmodels.DecodeRegistrarIdentity(r)}
	reg.Coefficients = Coefficients{A: r.F64(), B: r.F64(), C: r.F64()}
	r.Skip(len(reg.Reserved))
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode quadratic registrar: %w", err)
	}
	return reg, nil
}
