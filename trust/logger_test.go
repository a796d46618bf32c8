package trust

import (
	stdlog "log"
	"os"
	"testing"

	"github.com/go-logr/stdr"
	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	testLogger := stdr.New(stdlog.New(os.Stdout, "test", stdlog.LstdFlags))
	SetLogger(testLogger)
	assert.Equal(t, testLogger, log, "setting package global logger was unsuccessful")
	SetLogger(DiscardLogger{})
}

func TestGetLogger(t *testing.T) {
	testLogger := GetLogger()
	assert.Equal(t, log, testLogger, "function did not return current logger")
}
