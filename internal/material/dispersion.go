package material

// Coefficients are the A and B terms of n(λ) = A + B/λ².
type Coefficients struct {
	A float64
	B float64
}

// IndexAt returns the refractive index at the given wavelength.
func (c Coefficients) IndexAt(wavelengthNm float64) float64 {
	return IndexAt(c.A, c.B, wavelengthNm)
}

// IndexAt evaluates A + B/λ². The wavelength must be positive.
func IndexAt(a, b, wavelengthNm float64) float64 {
	return a + b/(wavelengthNm*wavelengthNm)
}

// Effective resolves the medium made of the given materials, listed in the order
// they were entered.
//
// An empty list is air. Overlapping materials add their coefficients; of the
// non-overlapping ones only the last entered contributes. A result of A=0 and B=0
// falls back to the last entered material unchanged, so a lone mirror keeps n=0.
func Effective(entered []Material) Coefficients {
	if len(entered) == 0 {
		return Air.Coefficients()
	}

	var sum Coefficients
	var exclusive *Material
	for i := range entered {
		m := &entered[i]
		if !m.Overlaps {
			exclusive = m
			continue
		}
		sum.A += m.A
		sum.B += m.B
	}
	if exclusive != nil {
		sum.A += exclusive.A
		sum.B += exclusive.B
	}

	if sum.A == 0 && sum.B == 0 {
		return entered[len(entered)-1].Coefficients()
	}
	return sum
}
