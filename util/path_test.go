package util

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandUser(t *testing.T) {
	os.Setenv("HOME", "/home/source")
	assert.Equal(t, "/home/source/doormon", ExpandUser("~/doormon"))
	assert.Equal(t, "/var/log", ExpandUser("/var/log"))
}
