package tensorspv

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gogpu/tensorspv/device"
	"github.com/gogpu/tensorspv/ir"
	"github.com/gogpu/tensorspv/ir/passes"
	"github.com/gogpu/tensorspv/spirv"
)

// Options configures one Compile call.
type Options struct {
	// Logger receives structured progress/diagnostic records for each
	// pipeline stage. A nil Logger disables logging.
	Logger *zap.Logger

	// ElemSize overrides the per-type byte size the stack-slot pass
	// uses when sizing private allocas. Most callers should leave this
	// nil; the default matches ir.ScalarKind.ComponentWidth times the
	// memref's element count.
	ElemSize func(ir.Type) int64
}

// DefaultOptions returns an Options with a no-op logger and the
// built-in element-size function.
func DefaultOptions() Options {
	return Options{Logger: zap.NewNop(), ElemSize: defaultElemSize}
}

func defaultElemSize(t ir.Type) int64 {
	switch inner := t.Inner.(type) {
	case ir.ScalarType:
		return int64(inner.Kind.ComponentWidth())
	case ir.MemrefType:
		size := int64(defaultElemSize(inner.Element))
		for _, s := range inner.Shape {
			if s == ir.DynamicSize {
				continue
			}
			size *= s
		}
		return size
	case ir.CoopMatrixType:
		return inner.Rows * inner.Cols * int64(inner.Component.Kind.ComponentWidth())
	default:
		return 0
	}
}

// Binary is a compiled SPIR-V module plus the per-kernel metadata the
// pass pipeline derived for it.
type Binary struct {
	// Words is the SPIR-V binary word stream, little-endian encoded.
	Words []byte

	// KernelMetadata maps each compiled function's name to its final
	// work-group/subgroup sizing, for callers that need to configure a
	// launch without re-parsing the binary's execution modes.
	KernelMetadata map[string]ir.KernelMetadata
}

// Compile verifies prog, runs the fixed optimization pipeline targeting
// dev, lowers the result to SPIR-V, and assembles the binary (§4
// "Pipeline overview"). It returns every diagnostic verify accumulated
// if prog fails verification; otherwise len(Binary.Words) is always a
// multiple of 4.
func Compile(prog *ir.Program, dev device.Info, opts Options) (Binary, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	elemSize := opts.ElemSize
	if elemSize == nil {
		elemSize = defaultElemSize
	}

	log.Info("verifying program", zap.Int("functions", len(prog.Functions)))
	if err := ir.Verify(prog); err != nil {
		log.Error("verification failed", zap.Error(err))
		return Binary{}, err
	}

	log.Info("running optimization pipeline")
	slots := passes.Run(prog, dev, elemSize)

	log.Info("lowering to SPIR-V", zap.String("device", dev.Name))
	backend := spirv.NewBackend(dev, slots)
	mod, err := backend.Lower(prog)
	if err != nil {
		log.Error("lowering failed", zap.Error(err))
		return Binary{}, fmt.Errorf("tensorspv: %w", err)
	}

	meta := make(map[string]ir.KernelMetadata, len(prog.Functions))
	for _, fn := range prog.Functions {
		meta[fn.Name] = fn.Metadata
	}

	log.Info("assembling binary", zap.Uint32("id_bound", mod.Bound()))
	return Binary{Words: mod.Emit(), KernelMetadata: meta}, nil
}
