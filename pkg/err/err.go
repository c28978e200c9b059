package errprocess

import (
	"errors"
	"fmt"

	"renderbox/pkg/logger"
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Wrap 記錄 errMsg 並回傳仍可用 errors.Is 比對 base 的錯誤
func Wrap(base error, errMsg string) error {
	logger.Log.Error(errMsg)
	return fmt.Errorf("%s : %w", errMsg, base)
}
