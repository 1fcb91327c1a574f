package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-ntfs/internal/disk"
)

// Context holds application-wide configuration and state
type Context struct {
	context.Context

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// DefaultTimeout bounds opening a volume; zero or negative disables it.
	DefaultTimeout time.Duration

	// Image handling configuration
	Config *disk.ImageConfig

	// Logger is never nil. It discards everything when quiet.
	Logger *zap.Logger

	// Progress reporting
	ProgressCallback func(message string, percent int)
}

// NewContext creates a new application context
func NewContext() *Context {
	return &Context{
		Context:        context.Background(),
		OutputFormat:   "table",
		DefaultTimeout: 30 * time.Second,
		Config:         disk.DefaultImageConfig(),
		Logger:         zap.NewNop(),
	}
}

// ConfigureLogger builds the logger for the current verbosity settings.
// Verbose runs log at debug level; otherwise only warnings and errors reach stderr.
func (c *Context) ConfigureLogger() error {
	if c.Quiet {
		c.Logger = zap.NewNop()
		return nil
	}

	config := zap.NewDevelopmentConfig()
	if !c.Verbose {
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		config.DisableCaller = true
		config.DisableStacktrace = true
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}
	c.Logger = logger
	return nil
}

// WithTimeout creates a context with timeout. A timeout of zero or less
// returns a cancellable context without a deadline.
func (c *Context) WithTimeout(timeout time.Duration) (*Context, context.CancelFunc) {
	if timeout <= 0 {
		return c.WithCancel()
	}
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, cancel
}

// WithCancel creates a cancellable context
func (c *Context) WithCancel() (*Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(c.Context)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, cancel
}

// SetProgress sets the progress callback function
func (c *Context) SetProgress(callback func(string, int)) {
	c.ProgressCallback = callback
}

// Progress reports progress if callback is set
func (c *Context) Progress(message string, percent int) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(message, percent)
	}
}

// Log records an informational message when verbose
func (c *Context) Log(message string, fields ...zap.Field) {
	if !c.Quiet && c.Verbose {
		c.Logger.Info(message, fields...)
	}
}

// Error records an error message unless quiet
func (c *Context) Error(message string, fields ...zap.Field) {
	if !c.Quiet {
		c.Logger.Error(message, fields...)
	}
}
