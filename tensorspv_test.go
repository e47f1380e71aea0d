package tensorspv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/tensorspv/device"
	"github.com/gogpu/tensorspv/examples/tallskinny"
	"github.com/gogpu/tensorspv/ir"
)

func TestCompileEmptyKernel(t *testing.T) {
	prog := ir.NewProgram()
	prog.NewFunction("empty")

	bin, err := Compile(prog, device.Generic16(), DefaultOptions())
	require.NoError(t, err)

	assert.Zero(t, len(bin.Words)%4, "binary length %d is not a multiple of 4", len(bin.Words))
	assert.GreaterOrEqual(t, len(bin.Words), 20, "binary shorter than a 5-word header")
	assert.Contains(t, bin.KernelMetadata, "empty")
}

func TestCompileTallSkinnyOnEachCatalogDevice(t *testing.T) {
	for _, dev := range []device.Info{device.Generic16(), device.DG2(), device.PVC()} {
		dev := dev
		t.Run(dev.Name, func(t *testing.T) {
			prog := ir.NewProgram()
			tallskinny.Build(prog)

			bin, err := Compile(prog, dev, DefaultOptions())
			require.NoErrorf(t, err, "Compile on %s", dev.Name)
			require.NotEmpty(t, bin.Words, "Compile produced an empty binary")

			meta, ok := bin.KernelMetadata["tall_and_skinny"]
			require.True(t, ok, "KernelMetadata missing entry for tall_and_skinny")
			assert.Positive(t, meta.SubgroupSize, "SubgroupSize should be a positive lane width")
		})
	}
}

func TestCompileRejectsUnverifiableProgram(t *testing.T) {
	prog := ir.NewProgram()
	fn := prog.NewFunction("dangling_yield")
	b := ir.NewBuilder(prog.Ctx, fn.Body)
	// A bare yield with no enclosing if/for is a verifier violation.
	b.Yield(nil, ir.Location{})

	_, err := Compile(prog, device.Generic16(), DefaultOptions())
	require.Error(t, err, "expected Compile to reject a program with a dangling yield")
}
