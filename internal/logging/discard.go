package logging

import "context"

// DiscardLogger drops everything. Useful as a default and in tests.
type DiscardLogger struct{}

func NewDiscardLogger() *DiscardLogger { return &DiscardLogger{} }

func (d *DiscardLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (d *DiscardLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (d *DiscardLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (d *DiscardLogger) Error(ctx context.Context, msg string, args ...any) {}
func (d *DiscardLogger) With(args ...any) Logger                            { return d }
