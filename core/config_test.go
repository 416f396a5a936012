package core

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	origEnv, hadEnv := os.LookupEnv("ENV")
	defer func() {
		if hadEnv {
			_ = os.Setenv("ENV", origEnv)
		} else {
			_ = os.Unsetenv("ENV")
		}
	}()

	_ = os.Unsetenv("ENV")
	conf := NewConfig()
	assert.Equal(t, "DEV", conf.Env)
	assert.False(t, conf.TestMode)
	assert.True(t, conf.Debug)

	// TEST runs with production error rendering
	_ = os.Setenv("ENV", "TEST")
	conf = NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.False(t, conf.Debug)
}
