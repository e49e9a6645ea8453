package texel

import "github.com/chewxy/math32"

// Float16ToFloat32 converts an IEEE half precision value to float32.
// Subnormals are preserved.
func Float16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := uint32(h>>10) & 0x1f
	mant := uint32(h & 0x3ff)

	switch exp {
	case 0:
		v := math32.Ldexp(float32(mant), -24)
		if sign != 0 {
			return -v
		}
		return v
	case 0x1f:
		bits := sign<<31 | 0x7f800000
		if mant != 0 {
			bits |= mant << 13
		}
		return math32.Float32frombits(bits)
	default:
		return math32.Float32frombits(sign<<31 | (exp+127-15)<<23 | mant<<13)
	}
}

// smallFloat decodes the unsigned 11 and 10 bit floats of R11G11B10:
// a 5 bit exponent with bias 15 over mantBits of mantissa.
func smallFloat(v uint32, mantBits int) float32 {
	exp := int(v>>mantBits) & 0x1f
	mant := v & (1<<mantBits - 1)

	switch exp {
	case 0:
		return math32.Ldexp(float32(mant), -14-mantBits)
	case 0x1f:
		if mant == 0 {
			return math32.Inf(1)
		}
		return math32.NaN()
	default:
		return math32.Ldexp(float32(mant|1<<mantBits), exp-15-mantBits)
	}
}
