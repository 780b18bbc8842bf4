package output

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineFormats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Line("alpha", "hello")
	p.ErrorLine("alpha", "broken pipe")
	p.Done("alpha")

	assert.Equal(t, "alpha: hello\nalpha: ERROR: broken pipe\nalpha: DONE!\n", buf.String())
}

func TestNilWriterDefaultsToStdout(t *testing.T) {
	p := NewPrinter(nil)
	assert.NotNil(t, p.writer)
}

func TestConcurrentWritersKeepLinesWhole(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.Line("h", "tick")
			}
		}()
	}
	wg.Wait()

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	assert.Len(t, lines, 400)
	for _, line := range lines {
		assert.Equal(t, "h: tick", string(line))
	}
}
