package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullName(t *testing.T) {
	assert.Equal(t, "meeting.status", New("meeting", "status").FullName())
	assert.Equal(t, "status", New("", "status").FullName())
}
