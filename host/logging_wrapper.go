package host

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/fornellas/slogxt/log"
)

// LoggingWrapper wraps Host logging received calls.
type LoggingWrapper struct {
	host Host
}

func NewLoggingWrapper(host Host) *LoggingWrapper {
	return &LoggingWrapper{host: host}
}

func (h *LoggingWrapper) logger(ctx context.Context) (context.Context, *slog.Logger) {
	return log.MustWithGroupAttrs(ctx, "🖥️ Host", "type", h.host.Type(), "name", h.host.String())
}

func (h *LoggingWrapper) Run(ctx context.Context, cmd Cmd) (WaitStatus, string, string, error) {
	ctx, logger := h.logger(ctx)
	logger.Debug("Run", "cmd", cmd)
	return h.host.Run(ctx, cmd)
}

func (h *LoggingWrapper) Geteuid(ctx context.Context) (uint64, error) {
	ctx, logger := h.logger(ctx)
	logger.Debug("Geteuid")
	return h.host.Geteuid(ctx)
}

func (h *LoggingWrapper) Lstat(ctx context.Context, name string) (*FileInfo, error) {
	ctx, logger := h.logger(ctx)
	logger.Debug("Lstat", "name", name)
	return h.host.Lstat(ctx, name)
}

func (h *LoggingWrapper) ReadFile(ctx context.Context, name string) ([]byte, error) {
	ctx, logger := h.logger(ctx)
	logger.Debug("ReadFile", "name", name)
	return h.host.ReadFile(ctx, name)
}

func (h *LoggingWrapper) Readlink(ctx context.Context, name string) (string, error) {
	ctx, logger := h.logger(ctx)
	logger.Debug("Readlink", "name", name)
	return h.host.Readlink(ctx, name)
}

func (h *LoggingWrapper) WriteFile(ctx context.Context, name string, data []byte, perm fs.FileMode) error {
	ctx, logger := h.logger(ctx)
	logger.Debug("WriteFile", "name", name, "perm", perm)
	return h.host.WriteFile(ctx, name, data, perm)
}

func (h *LoggingWrapper) Mkdir(ctx context.Context, name string, perm fs.FileMode) error {
	ctx, logger := h.logger(ctx)
	logger.Debug("Mkdir", "name", name, "perm", perm)
	return h.host.Mkdir(ctx, name, perm)
}

func (h *LoggingWrapper) Symlink(ctx context.Context, oldname, newname string) error {
	ctx, logger := h.logger(ctx)
	logger.Debug("Symlink", "oldname", oldname, "newname", newname)
	return h.host.Symlink(ctx, oldname, newname)
}

func (h *LoggingWrapper) Remove(ctx context.Context, name string) error {
	ctx, logger := h.logger(ctx)
	logger.Debug("Remove", "name", name)
	return h.host.Remove(ctx, name)
}

func (h *LoggingWrapper) Chmod(ctx context.Context, name string, mode fs.FileMode) error {
	ctx, logger := h.logger(ctx)
	logger.Debug("Chmod", "name", name, "mode", mode)
	return h.host.Chmod(ctx, name, mode)
}

func (h *LoggingWrapper) String() string {
	return h.host.String()
}

func (h *LoggingWrapper) Type() string {
	return h.host.Type()
}

func (h *LoggingWrapper) Close(ctx context.Context) error {
	ctx, logger := h.logger(ctx)
	logger.Debug("Close")
	return h.host.Close(ctx)
}
