package homog

import "math"

// postProcess reads the apparent Lamé constants off Chom, derives the
// scalar moduli and measures the symmetry and isotropy deviations. The
// deviations are discretization error, reported through the configured
// logger rather than raised as failures.
func postProcess(res *Result, cfg Config) {
	c := res.Chom
	res.LamHom = c.At(0, 1)
	res.MuHom = c.At(2, 2)
	res.EHom = res.MuHom * (3*res.LamHom + 2*res.MuHom) / (res.LamHom + res.MuHom)
	res.NuHom = res.LamHom / (2 * (res.LamHom + res.MuHom))

	scale := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			scale = math.Max(scale, math.Abs(c.At(i, j)))
		}
	}
	if scale == 0 {
		return
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			dev := math.Abs(c.At(i, j)-c.At(j, i)) / scale
			res.SymmetryDev = math.Max(res.SymmetryDev, dev)
		}
	}

	// isotropy: C00 ~ C11 ~ lam + 2*mu
	iso := res.LamHom + 2*res.MuHom
	res.IsotropyDev = math.Max(
		math.Abs(c.At(0, 0)-c.At(1, 1)),
		math.Max(math.Abs(c.At(0, 0)-iso), math.Abs(c.At(1, 1)-iso)),
	) / scale

	if cfg.Logger == nil {
		return
	}
	if res.SymmetryDev > cfg.SymmetryTol {
		cfg.Logger.Warn("homogenized tensor deviates from symmetry",
			"deviation", res.SymmetryDev, "threshold", cfg.SymmetryTol)
	}
	if res.IsotropyDev > cfg.IsotropyTol {
		cfg.Logger.Warn("homogenized tensor deviates from isotropy",
			"deviation", res.IsotropyDev, "threshold", cfg.IsotropyTol)
	}
}
