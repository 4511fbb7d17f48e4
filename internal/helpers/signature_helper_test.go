package helpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSignSaleRoundTrip(t *testing.T) {
	reference := uuid.New()
	signature := SignSale(42, 7, reference, "test-secret")

	require.NotEmpty(t, signature)
	require.True(t, VerifySaleSignature(42, 7, reference, "test-secret", signature))
}

func TestVerifySaleSignatureRejectsTampering(t *testing.T) {
	reference := uuid.New()
	signature := SignSale(42, 7, reference, "test-secret")

	require.False(t, VerifySaleSignature(43, 7, reference, "test-secret", signature))
	require.False(t, VerifySaleSignature(42, 8, reference, "test-secret", signature))
	require.False(t, VerifySaleSignature(42, 7, uuid.New(), "test-secret", signature))
	require.False(t, VerifySaleSignature(42, 7, reference, "other-secret", signature))
	require.False(t, VerifySaleSignature(42, 7, reference, "test-secret", ""))
}
