package spimem

import (
	"context"
	"fmt"
	"log/slog"
)

func logattrs(l *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if l == nil {
		return
	}
	l.LogAttrs(context.Background(), level, msg, attrs...)
}

func (b *Bringup) logerr(msg string, attrs ...slog.Attr) {
	logattrs(b.Log, slog.LevelError, msg, attrs...)
}

func (b *Bringup) warn(msg string, attrs ...slog.Attr) {
	logattrs(b.Log, slog.LevelWarn, msg, attrs...)
}

func (b *Bringup) info(msg string, attrs ...slog.Attr) {
	logattrs(b.Log, slog.LevelInfo, msg, attrs...)
}

func (b *Bringup) debug(msg string, attrs ...slog.Attr) {
	logattrs(b.Log, slog.LevelDebug, msg, attrs...)
}

func (c *Controller) info(msg string, attrs ...slog.Attr) {
	logattrs(c.log, slog.LevelInfo, msg, attrs...)
}

func (c *Controller) debug(msg string, attrs ...slog.Attr) {
	logattrs(c.log, slog.LevelDebug, msg, attrs...)
}

func hex32(u uint32) string { return fmt.Sprintf("0x%08x", u) }

func hex64(u uint64) string { return fmt.Sprintf("%#x", u) }

func addrAttr(key string, addr uint64) slog.Attr { return slog.String(key, hex64(addr)) }
