package sessioncookie_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dottapps/auth-gateway/sessioncookie"
)

const testSecret = "test-master-secret"

func newTestCodec(t *testing.T) *sessioncookie.Codec {
	t.Helper()
	codec, err := sessioncookie.NewCodec(testSecret)
	require.NoError(t, err)
	return codec
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	original := sessioncookie.Session{
		SessionID: "sess-1234",
		UserID:    "user-42",
		TenantID:  "tenant-9",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	value, err := codec.Encode(original)
	require.NoError(t, err)

	decoded, err := codec.Decode(value)
	require.NoError(t, err)
	// Timestamps are excluded from equality: JWT claims truncate to
	// seconds.
	require.Equal(t, original.SessionID, decoded.SessionID)
	require.Equal(t, original.UserID, decoded.UserID)
	require.Equal(t, original.TenantID, decoded.TenantID)
}

func TestCodecDecodeFailsClosedOnTampering(t *testing.T) {
	codec := newTestCodec(t)

	value, err := codec.Encode(sessioncookie.Session{
		SessionID: "sess-1",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	tampered := strings.Replace(value, value[len(value)-4:], "AAAA", 1)
	_, err = codec.Decode(tampered)
	require.Error(t, err)

	var decodeErr *sessioncookie.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestCodecDecodeRejectsForeignKey(t *testing.T) {
	codec := newTestCodec(t)
	other, err := sessioncookie.NewCodec("a-different-secret")
	require.NoError(t, err)

	value, err := other.Encode(sessioncookie.Session{
		SessionID: "sess-1",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = codec.Decode(value)
	var decodeErr *sessioncookie.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestCodecDecodeRejectsGarbage(t *testing.T) {
	codec := newTestCodec(t)

	for _, value := range []string{"", "garbage", "a.b.c"} {
		_, err := codec.Decode(value)
		require.Error(t, err, "value %q", value)
	}
}

func TestCodecDecodeRejectsExpired(t *testing.T) {
	codec := newTestCodec(t)

	value, err := codec.Encode(sessioncookie.Session{
		SessionID: "sess-1",
		IssuedAt:  time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = codec.Decode(value)
	var decodeErr *sessioncookie.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := sessioncookie.NewCodec("")
	require.Error(t, err)
}
