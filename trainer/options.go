package trainer

import (
	"go.uber.org/zap"

	"github.com/neurlang/trainkit/metrics"
	"github.com/neurlang/trainkit/models"
)

type options struct {
	log      *zap.Logger
	recorder *metrics.Recorder
	quantize models.Quantizer
}

// Option customizes Setup.
type Option func(*options)

// WithLogger logs every stage to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRecorder reports built components, failures and split sizes to r.
func WithRecorder(r *metrics.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithQuantizer overrides the quantizer of the registries.
func WithQuantizer(q models.Quantizer) Option {
	return func(o *options) { o.quantize = q }
}
