package preview

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRelease(t *testing.T) {
	store := NewStore()

	handle := store.Put([]byte("png-bytes"), "image/png")
	require.NotEqual(t, uuid.Nil, handle)
	assert.Equal(t, 1, store.Outstanding())

	data, contentType, ok := store.Get(handle)
	require.True(t, ok)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "image/png", contentType)

	assert.True(t, store.Release(handle))
	assert.Equal(t, 0, store.Outstanding())

	_, _, ok = store.Get(handle)
	assert.False(t, ok)
}

func TestReleaseIsExactlyOnce(t *testing.T) {
	store := NewStore()
	handle := store.Put([]byte("x"), "image/jpeg")

	assert.True(t, store.Release(handle))
	// A second release of the same handle is a no-op.
	assert.False(t, store.Release(handle))
	assert.Equal(t, 0, store.Outstanding())
}

func TestReleaseUnknownHandle(t *testing.T) {
	store := NewStore()
	assert.False(t, store.Release(uuid.New()))
}

func TestHandlesAreDistinct(t *testing.T) {
	store := NewStore()
	a := store.Put([]byte("a"), "image/png")
	b := store.Put([]byte("a"), "image/png")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, store.Outstanding())
}
