package serialization

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeChecksum(t *testing.T) {
	data := []byte("test data")
	assert.Equal(t, ComputeChecksum(data), ComputeChecksum(data))
	assert.NotEqual(t, ComputeChecksum(data), ComputeChecksum([]byte("different data")))
}

func TestComputeChecksumReader(t *testing.T) {
	data := []byte("test data for reader")
	sum, err := ComputeChecksumReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, ComputeChecksum(data), sum)
}

func TestValidateChecksum(t *testing.T) {
	sum := ComputeChecksum([]byte("test data"))
	assert.NoError(t, ValidateChecksum(sum, sum))

	other := ComputeChecksum([]byte("other"))
	assert.True(t, errors.Is(ValidateChecksum(sum, other), ErrChecksumMismatch))
}
