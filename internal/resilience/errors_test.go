package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad request"), false},
		{"explicit", Transient(errors.New("429"), 429), true},
		{"wrapped explicit", eris.Wrap(Transient(errors.New("503"), 503), "call"), true},
		{"net timeout", fmt.Errorf("dial: %w", timeoutErr{}), true},
		{"conn reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"message match", errors.New("write: Broken Pipe"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestTransient_Nil(t *testing.T) {
	assert.NoError(t, Transient(nil, 500))
}

func TestTransient_Unwrap(t *testing.T) {
	base := errors.New("overloaded")
	err := Transient(base, 529)
	assert.ErrorIs(t, err, base)

	var te *TransientError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, 529, te.StatusCode)
	assert.Equal(t, "overloaded", err.Error())
}

func TestTransientStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		assert.True(t, TransientStatus(code), code)
	}
	for _, code := range []int{200, 400, 401, 404, 422} {
		assert.False(t, TransientStatus(code), code)
	}
}
