package handler

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClinicalDocumentObjectKeyBuildsScopedKey(t *testing.T) {
	userID := uuid.New()

	key, err := clinicalDocumentObjectKey(userID, "referral", "Surat Rujukan.PDF")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "clinical-documents/"+userID.String()+"/referral-"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
}

func TestClinicalDocumentObjectKeyRejectsUnsupportedFormats(t *testing.T) {
	userID := uuid.New()

	for _, filename := range []string{"macro.docx", "archive.zip", "script.exe", "noextension"} {
		_, err := clinicalDocumentObjectKey(userID, "health", filename)
		assert.Error(t, err, filename)
	}
}

func TestClinicalDocumentObjectKeyIsUniquePerUpload(t *testing.T) {
	userID := uuid.New()

	first, err := clinicalDocumentObjectKey(userID, "insurance", "polis.pdf")
	require.NoError(t, err)
	second, err := clinicalDocumentObjectKey(userID, "insurance", "polis.pdf")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
