package systems

import (
	"os"
	"testing"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
