package service

import (
	"io"
	"os"
	"testing"

	"farmershub/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("test", "disabled", io.Discard)
	os.Exit(m.Run())
}
