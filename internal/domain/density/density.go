// Package density fits a two-dimensional Gaussian kernel density estimate over
// projected landing points and ranks the points by their estimated density.
package density

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/dingerzone/seatfinder/internal/domain/model"
)

// Rule names a bandwidth selection rule.
type Rule string

// Supported bandwidth rules.
const (
	Scott     Rule = "scott"
	Silverman Rule = "silverman"
)

const (
	dims           = 2
	defaultMaxCond = 1e12
)

// ParseRule maps a configuration string to a Rule.
func ParseRule(s string) (Rule, error) {
	switch Rule(strings.ToLower(strings.TrimSpace(s))) {
	case "", Scott:
		return Scott, nil
	case Silverman:
		return Silverman, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRule, s)
	}
}

// Factor returns the bandwidth factor for n two-dimensional samples.
func (r Rule) Factor(n int) float64 {
	nf := float64(n)
	if r == Silverman {
		return math.Pow(nf*(dims+2)/4, -1.0/(dims+4))
	}
	return math.Pow(nf, -1.0/(dims+4))
}

// Estimator evaluates a Gaussian KDE whose kernel covariance is the unbiased
// sample covariance scaled by the squared rule factor.
type Estimator struct {
	rule    Rule
	maxCond float64
}

// NewEstimator returns an Estimator using Scott's rule unless overridden.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{rule: Scott, maxCond: defaultMaxCond}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rule reports the configured bandwidth rule.
func (e *Estimator) Rule() Rule { return e.rule }

// Evaluate fits the density over points and returns its value at each point,
// index-aligned with the input.
func (e *Estimator) Evaluate(points []model.FieldPoint) ([]float64, error) {
	n := len(points)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}

	data := mat.NewDense(n, dims, nil)
	for i, p := range points {
		data.Set(i, 0, p.X)
		data.Set(i, 1, p.Y)
	}

	cov := mat.NewSymDense(dims, nil)
	stat.CovarianceMatrix(cov, data, nil)
	f := e.rule.Factor(n)
	cov.ScaleSym(f*f, cov)

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return nil, fmt.Errorf("%w: covariance is not positive definite", ErrDegenerate)
	}
	if c := chol.Cond(); c > e.maxCond || math.IsInf(c, 0) || math.IsNaN(c) {
		return nil, fmt.Errorf("%w: condition number %.3g", ErrDegenerate, c)
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}
	a, b, c := inv.At(0, 0), inv.At(0, 1), inv.At(1, 1)
	norm := 1 / (float64(n) * 2 * math.Pi * math.Sqrt(chol.Det()))

	out := make([]float64, n)
	for i, p := range points {
		var sum float64
		for _, q := range points {
			dx, dy := p.X-q.X, p.Y-q.Y
			sum += math.Exp(-0.5 * (a*dx*dx + 2*b*dx*dy + c*dy*dy))
		}
		out[i] = sum * norm
	}
	return out, nil
}
