package testtool

import (
	"errors"
	"net/http"
	_ "net/http/pprof" // 匯入後會自動註冊 pprof endpoint

	"renderbox/pkg/config"
	"renderbox/pkg/logger"

	"go.uber.org/zap"
)

// StartPprof 非 production 且有設定 addr 時啟動 pprof，建議綁 127.0.0.1
func StartPprof(addr string) bool {
	if config.IsProduction() || addr == "" {
		logger.Log.Info("pprof is disabled")
		return false
	}

	go func() {
		logger.Log.Info("Starting pprof server", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("pprof server failed", zap.Error(err))
		}
	}()
	return true
}
