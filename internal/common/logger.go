package common

import (
	"log"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.uber.org/zap"
)

// Basic project metadata.
const (
	ProjectName    = "fixora-pro-sync"
	ProjectVersion = "0.1.0"
)

var Logger *zap.Logger

func InitLogger() {
	if Logger != nil {
		return
	}
	l, _ := zap.NewProduction()
	Logger = l
}

// L returns the shared logger, falling back to a nop logger so library
// code never has to nil-check.
func L() *zap.Logger {
	if Logger == nil {
		return zap.NewNop()
	}
	return Logger
}

// InitHertzLogger routes hlog through the std log writer.
func InitHertzLogger() { hlog.SetOutput(log.Writer()) }
