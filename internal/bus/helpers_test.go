package bus

import (
	"bytes"
	"io"
	"testing"
)

// buildNROMImage assembles a minimal mapper-0 iNES image with patterned PRG.
func buildNROMImage(t *testing.T, prgPages uint8) io.Reader {
	t.Helper()

	image := []uint8{'N', 'E', 'S', 0x1A, prgPages, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]uint8, int(prgPages)*16384)
	for i := range prg {
		prg[i] = uint8(i * 7)
	}
	chr := make([]uint8, 8192)

	image = append(image, prg...)
	image = append(image, chr...)
	return bytes.NewReader(image)
}
