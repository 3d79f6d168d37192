package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)

	logger := New("log-test")

	type spec struct {
		level   Level
		emit    func(...interface{})
		visible bool
	}
	specs := []spec{
		{Notice, logger.Info, false},
		{Notice, logger.Notice, true},
		{Info, logger.Info, true},
		{Info, logger.Debug, false},
		{Debug, logger.Debug, true},
		{Error, logger.Warning, false},
		{Error, logger.Error, true},
	}

	for index, s := range specs {
		buf.Reset()
		SetLevel(s.level)

		s.emit("hello")

		got := strings.Contains(buf.String(), "hello")
		if got != s.visible {
			t.Fatalf("[spec %d] expected visible=%t; got output %q", index, s.visible, buf.String())
		}
		if s.visible && !strings.Contains(buf.String(), "[log-test]") {
			t.Fatalf("[spec %d] expected module name in output; got %q", index, buf.String())
		}
	}
}
