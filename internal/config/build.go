package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/udisondev/cityscape/internal/building"
	"github.com/udisondev/cityscape/internal/geom"
	"github.com/udisondev/cityscape/internal/light"
	"github.com/udisondev/cityscape/internal/scene"
)

// diagnostics accumulates named configuration errors so one load pass
// surfaces every malformed value instead of stopping at the first.
type diagnostics struct {
	errs []error
}

func (d *diagnostics) failf(key, format string, args ...any) {
	d.errs = append(d.errs, fmt.Errorf("config option %s: "+format, append([]any{key}, args...)...))
}

func (d *diagnostics) err() error {
	return errors.Join(d.errs...)
}

// parseFloats splits a whitespace-separated token list into exactly n
// floats.
func parseFloats(s string, n int) ([]float32, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", f, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseCube(s string) (geom.Cube, error) {
	v, err := parseFloats(s, 6)
	if err != nil {
		return geom.Cube{}, err
	}
	return geom.Cube{
		Min: mgl32.Vec3{v[0], v[2], v[4]},
		Max: mgl32.Vec3{v[1], v[3], v[5]},
	}, nil
}

func parseVec3(s string) (mgl32.Vec3, error) {
	v, err := parseFloats(s, 3)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}

func parseColor(s string) (geom.Color, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return geom.Color{}, err
	}
	return geom.Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}

// BuildParams converts the YAML building section into generator parameters,
// resolving texture names through tex. All malformed values are collected
// and returned as one joined error; the partially built params are still
// returned for inspection.
func (b Buildings) BuildParams(tex scene.TextureStore) (building.Params, error) {
	var diag diagnostics
	params := building.Params{
		Count:       b.Count,
		PlaceRadius: b.PlaceRadius,
		MaxDeltaZ:   b.MaxDeltaZ,
	}

	switch b.Conform {
	case "", "none":
		params.Conform = building.ConformNone
	case "flatten":
		params.Conform = building.ConformFlatten
	case "drop":
		params.Conform = building.ConformDrop
	default:
		diag.failf("buildings.conform", "unrecognized mode %q", b.Conform)
	}

	if b.SizeRange != "" {
		c, err := parseCube(b.SizeRange)
		if err != nil {
			diag.failf("buildings.size_range", "%v", err)
		} else {
			params.SizeRange = c
		}
	}
	if b.PosRange != "" {
		c, err := parseCube(b.PosRange)
		if err != nil {
			diag.failf("buildings.pos_range", "%v", err)
		} else {
			params.PosRange = c
		}
	}

	for i, m := range b.Materials {
		mat, err := m.build(tex, fmt.Sprintf("buildings.materials[%d]", i), &diag)
		if err == nil {
			params.Materials = append(params.Materials, mat)
		}
	}
	params.Finalize()
	return params, diag.err()
}

// build converts one material entry. Texture lookup failures and malformed
// colors are reported through diag; a material with any error is dropped.
func (m Material) build(tex scene.TextureStore, key string, diag *diagnostics) (building.Material, error) {
	mat := building.DefaultMaterial()
	before := len(diag.errs)

	lookupTex := func(pair *building.TexturePair, name, nmName, subkey string, tscale float32) {
		if tscale != 0 {
			pair.Scale = tscale
		}
		if name != "" {
			id, err := tex.Lookup(name)
			if err != nil {
				diag.failf(key+"."+subkey, "texture %q: %v", name, err)
			} else {
				pair.Texture = id
			}
		}
		if nmName != "" {
			id, err := tex.LookupNormal(nmName)
			if err != nil {
				diag.failf(key+"."+subkey, "normal map %q: %v", nmName, err)
			} else {
				pair.NormalMap = id
			}
		}
	}
	lookupTex(&mat.Side, m.SideTexture, m.SideNormalMap, "side", m.SideTScale)
	lookupTex(&mat.Roof, m.RoofTexture, m.RoofNormalMap, "roof", m.RoofTScale)

	parseRange := func(cr *building.ColorRange, exact, cmin, cmax string, gray float32, subkey string) {
		cr.GrayscaleRand = gray
		if exact != "" { // exact color: min == max
			c, err := parseColor(exact)
			if err != nil {
				diag.failf(key+"."+subkey, "%v", err)
				return
			}
			cr.Min, cr.Max = c, c
			return
		}
		if cmin != "" {
			c, err := parseColor(cmin)
			if err != nil {
				diag.failf(key+"."+subkey+"_min", "%v", err)
			} else {
				cr.Min = c
			}
		}
		if cmax != "" {
			c, err := parseColor(cmax)
			if err != nil {
				diag.failf(key+"."+subkey+"_max", "%v", err)
			} else {
				cr.Max = c
			}
		}
	}
	parseRange(&mat.SideColor, m.SideColor, m.SideColorMin, m.SideColorMax, m.SideGrayscale, "side_color")
	parseRange(&mat.RoofColor, m.RoofColor, m.RoofColorMin, m.RoofColorMax, m.RoofGrayscale, "roof_color")

	if len(diag.errs) > before {
		return mat, fmt.Errorf("material %s has errors", key)
	}
	return mat, nil
}

// BuildLights converts the YAML light entries into triggered light sources.
// Malformed entries are collected as named diagnostics and skipped.
func BuildLights(entries []Light) ([]*light.TriggeredSource, error) {
	var diag diagnostics
	out := make([]*light.TriggeredSource, 0, len(entries))

	for i, e := range entries {
		key := fmt.Sprintf("lights[%d]", i)
		before := len(diag.errs)

		pos, err := parseVec3(e.Pos)
		if err != nil {
			diag.failf(key+".pos", "%v", err)
		}
		color := geom.White
		if e.Color != "" {
			if color, err = parseColor(e.Color); err != nil {
				diag.failf(key+".color", "%v", err)
			}
		}

		var src light.Source
		switch e.Kind {
		case "", "point":
			src = light.NewPoint(e.Radius, pos, color)
		case "spot":
			dir, derr := parseVec3(e.Dir)
			if derr != nil {
				diag.failf(key+".dir", "%v", derr)
				continue
			}
			// The constructor treats bad geometry as a programming error;
			// user input is screened here instead.
			if dir == (mgl32.Vec3{}) {
				diag.failf(key+".dir", "direction must be non-zero")
				continue
			}
			bwidth := e.BWidth
			if bwidth == 0 {
				bwidth = 1.0 // omitted beam width means a full hemisphere
			}
			if bwidth < 0 || bwidth > 1 {
				diag.failf(key+".bwidth", "beam width %v out of range (0,1]", e.BWidth)
				continue
			}
			if e.RInner > e.Radius {
				diag.failf(key+".r_inner", "inner radius %v exceeds radius %v", e.RInner, e.Radius)
				continue
			}
			src = light.NewSpot(e.Radius, pos, dir, color, bwidth, e.RInner)
		case "line":
			pos2, perr := parseVec3(e.Pos2)
			if perr != nil {
				diag.failf(key+".pos2", "%v", perr)
				continue
			}
			src = light.NewLine(e.Radius, pos, pos2, color)
		default:
			diag.failf(key+".kind", "unrecognized kind %q", e.Kind)
			continue
		}
		if len(diag.errs) > before {
			continue
		}
		src.SetDynamic(e.Dynamic)

		ts := light.NewTriggeredSource(src)
		if e.ActDist > 0 || e.AutoOnTime > 0 {
			ts.Triggers = append(ts.Triggers, light.Trigger{
				ActPos:         pos,
				ActDist:        e.ActDist,
				AutoOnTime:     e.AutoOnTime,
				AutoOffTime:    e.AutoOffTime,
				RequiresAction: e.RequiresAct,
			})
		}
		if e.BindToVolume {
			ts.Bind = light.NewBindPoint(pos)
		}
		out = append(out, ts)
	}
	return out, diag.err()
}
