package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("info", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewWithWriter(&buf, false)
		l.Debugf("hidden %d", 1)
		l.Infof("timer %d enabled", 2)
		if strings.Contains(buf.String(), "hidden") {
			t.Errorf("expected debug output to be dropped, got %q", buf.String())
		}
		if !strings.Contains(buf.String(), "msg=timer 2 enabled") {
			t.Errorf("expected info output, got %q", buf.String())
		}
	})
	t.Run("debug", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewWithWriter(&buf, true)
		l.Debugf("overflow")
		if !strings.Contains(buf.String(), "level=debug") {
			t.Errorf("expected debug output, got %q", buf.String())
		}
	})
}
