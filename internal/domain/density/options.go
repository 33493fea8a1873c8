package density

// Option configures an Estimator.
type Option func(*Estimator)

// WithRule selects the bandwidth rule. Unknown rules are ignored.
func WithRule(r Rule) Option {
	return func(e *Estimator) {
		if r == Scott || r == Silverman {
			e.rule = r
		}
	}
}

// WithMaxCondition sets the condition number above which the kernel
// covariance is treated as singular.
func WithMaxCondition(c float64) Option {
	return func(e *Estimator) {
		if c > 1 {
			e.maxCond = c
		}
	}
}
