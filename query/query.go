// Copyright 2019 Radiation Detection and Imaging (RDI), LLC
// Use of this source code is governed by the BSD 3-clause
// license that can be found in the LICENSE file.

// Package query compiles the declarative ImageQuery expressions used to
// select telescopes for stereo reconstruction (§4.3).
//
// Supported syntax — >, <, >=, <=, ==, !=, &&, ||, () over field
// identifiers and numeric literals — is exactly a subset of Go expression
// grammar, so the query is parsed with go/parser instead of a hand-rolled
// lexer. No expression-evaluator library appears anywhere in the
// retrieved example corpus; reusing the toolchain's own expression parser
// is the idiomatic Go substitute and avoids writing a second, narrower
// parser for a grammar Go already knows.
package query

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/ctapipe-go/airshower/imaging"
)

// Predicate is a compiled ImageQuery expression.
type Predicate struct {
	expr ast.Expr
	src  string
}

var fields = map[string]func(*imaging.Parameters) float64{
	"hillas_intensity": func(p *imaging.Parameters) float64 { return p.Hillas.Intensity },
	"hillas_x":         func(p *imaging.Parameters) float64 { return p.Hillas.X },
	"hillas_y":         func(p *imaging.Parameters) float64 { return p.Hillas.Y },
	"hillas_length":    func(p *imaging.Parameters) float64 { return p.Hillas.Length },
	"hillas_width":     func(p *imaging.Parameters) float64 { return p.Hillas.Width },
	"hillas_psi":       func(p *imaging.Parameters) float64 { return p.Hillas.Psi },
	"hillas_r":         func(p *imaging.Parameters) float64 { return p.Hillas.R },
	"hillas_phi":       func(p *imaging.Parameters) float64 { return p.Hillas.Phi },
	"hillas_skewness":  func(p *imaging.Parameters) float64 { return p.Hillas.Skewness },
	"hillas_kurtosis":  func(p *imaging.Parameters) float64 { return p.Hillas.Kurtosis },

	"leakage_pixels_width_1":    func(p *imaging.Parameters) float64 { return p.Leakage.PixelsWidth1 },
	"leakage_pixels_width_2":    func(p *imaging.Parameters) float64 { return p.Leakage.PixelsWidth2 },
	"leakage_intensity_width_1": func(p *imaging.Parameters) float64 { return p.Leakage.IntensityWidth1 },
	"leakage_intensity_width_2": func(p *imaging.Parameters) float64 { return p.Leakage.IntensityWidth2 },

	"concentration_cog":    func(p *imaging.Parameters) float64 { return p.Concentration.ConcentrationCOG },
	"concentration_core":   func(p *imaging.Parameters) float64 { return p.Concentration.ConcentrationCore },
	"concentration_pixel":  func(p *imaging.Parameters) float64 { return p.Concentration.ConcentrationPixel },

	"morphology_n_pixels":        func(p *imaging.Parameters) float64 { return float64(p.Morphology.NPixels) },
	"morphology_n_islands":       func(p *imaging.Parameters) float64 { return float64(p.Morphology.NIslands) },
	"morphology_n_small_islands":  func(p *imaging.Parameters) float64 { return float64(p.Morphology.NSmallIslands) },
	"morphology_n_medium_islands": func(p *imaging.Parameters) float64 { return float64(p.Morphology.NMediumIslands) },
	"morphology_n_large_islands":  func(p *imaging.Parameters) float64 { return float64(p.Morphology.NLargeIslands) },

	"intensity_max":       func(p *imaging.Parameters) float64 { return p.Intensity.IntensityMax },
	"intensity_mean":      func(p *imaging.Parameters) float64 { return p.Intensity.IntensityMean },
	"intensity_std":       func(p *imaging.Parameters) float64 { return p.Intensity.IntensityStd },
	"intensity_skewness":  func(p *imaging.Parameters) float64 { return p.Intensity.IntensitySkewness },
	"intensity_kurtosis":  func(p *imaging.Parameters) float64 { return p.Intensity.IntensityKurtosis },
}

// Compile parses and validates an ImageQuery expression once at startup.
// Unknown identifiers fail predicate construction (§4.3, a Configuration
// error per §7).
func Compile(expr string) (*Predicate, error) {
	e, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("query: cannot parse %q: %w", expr, err)
	}
	if err := validate(e); err != nil {
		return nil, fmt.Errorf("query: invalid expression %q: %w", expr, err)
	}
	return &Predicate{expr: e, src: expr}, nil
}

// String returns the original expression text.
func (p *Predicate) String() string { return p.src }

// Eval evaluates the compiled predicate against a set of image
// parameters.
func (p *Predicate) Eval(params *imaging.Parameters) (bool, error) {
	return evalBool(p.expr, params)
}

func validate(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return validate(n.X)
	case *ast.BinaryExpr:
		if err := validate(n.X); err != nil {
			return err
		}
		return validate(n.Y)
	case *ast.Ident:
		if _, ok := fields[n.Name]; !ok {
			return fmt.Errorf("unknown field %q", n.Name)
		}
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return fmt.Errorf("unsupported literal %q", n.Value)
		}
	case *ast.UnaryExpr:
		if n.Op != token.SUB {
			return fmt.Errorf("unsupported unary operator %q", n.Op)
		}
		return validate(n.X)
	default:
		return fmt.Errorf("unsupported expression of type %T", e)
	}
	return nil
}

func evalBool(e ast.Expr, params *imaging.Parameters) (bool, error) {
	if p, ok := e.(*ast.ParenExpr); ok {
		return evalBool(p.X, params)
	}
	b, ok := e.(*ast.BinaryExpr)
	if !ok {
		return false, fmt.Errorf("query: expected boolean expression, got %T", e)
	}
	switch b.Op {
	case token.LAND:
		lhs, err := evalBool(b.X, params)
		if err != nil {
			return false, err
		}
		rhs, err := evalBool(b.Y, params)
		if err != nil {
			return false, err
		}
		return lhs && rhs, nil
	case token.LOR:
		lhs, err := evalBool(b.X, params)
		if err != nil {
			return false, err
		}
		rhs, err := evalBool(b.Y, params)
		if err != nil {
			return false, err
		}
		return lhs || rhs, nil
	case token.GTR, token.LSS, token.GEQ, token.LEQ, token.EQL, token.NEQ:
		lhs, err := evalNum(b.X, params)
		if err != nil {
			return false, err
		}
		rhs, err := evalNum(b.Y, params)
		if err != nil {
			return false, err
		}
		switch b.Op {
		case token.GTR:
			return lhs > rhs, nil
		case token.LSS:
			return lhs < rhs, nil
		case token.GEQ:
			return lhs >= rhs, nil
		case token.LEQ:
			return lhs <= rhs, nil
		case token.EQL:
			return lhs == rhs, nil
		case token.NEQ:
			return lhs != rhs, nil
		}
	}
	return false, fmt.Errorf("query: unsupported operator %q", b.Op)
}

func evalNum(e ast.Expr, params *imaging.Parameters) (float64, error) {
	switch n := e.(type) {
	case *ast.ParenExpr:
		return evalNum(n.X, params)
	case *ast.Ident:
		accessor, ok := fields[n.Name]
		if !ok {
			return 0, fmt.Errorf("query: unknown field %q", n.Name)
		}
		return accessor(params), nil
	case *ast.BasicLit:
		var v float64
		if _, err := fmt.Sscanf(n.Value, "%g", &v); err != nil {
			return 0, fmt.Errorf("query: bad numeric literal %q: %w", n.Value, err)
		}
		return v, nil
	case *ast.UnaryExpr:
		if n.Op != token.SUB {
			return 0, fmt.Errorf("query: unsupported unary operator %q", n.Op)
		}
		v, err := evalNum(n.X, params)
		return -v, err
	}
	return 0, fmt.Errorf("query: expected numeric expression, got %T", e)
}
