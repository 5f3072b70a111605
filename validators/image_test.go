package validators

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func init() {
	viper.Set("upload.max_size", int64(1<<20))
	viper.Set("upload.allowed_types", []string{"image/jpeg", "image/png", "image/webp"})
}

// fileHeader round-trips data through a multipart request to get a real
// *multipart.FileHeader the way gin hands them to handlers.
func fileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	if contentType != "" {
		hdr.Set("Content-Type", contentType)
	}

	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, fh, err := req.FormFile("image")
	require.NoError(t, err)
	return fh
}

func TestImageValidatorAcceptsPNG(t *testing.T) {
	fh := fileHeader(t, "photo.png", "image/png", pngBytes)

	code, f, ct, err := ImageValidator(fh)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 0, code)
	assert.Equal(t, "image/png", ct)

	// The file comes back rewound, the full content is still readable
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestImageValidatorRejectsDeclaredNonImage(t *testing.T) {
	fh := fileHeader(t, "notes.txt", "text/plain", []byte("hello"))

	code, _, _, err := ImageValidator(fh)
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestImageValidatorSniffsContent(t *testing.T) {
	// Declared as an image but the bytes say otherwise
	fh := fileHeader(t, "fake.png", "image/png", []byte("not a png at all"))

	code, _, _, err := ImageValidator(fh)
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestImageValidatorRejectsOversize(t *testing.T) {
	big := make([]byte, (1<<20)+1)
	copy(big, pngBytes)
	fh := fileHeader(t, "huge.png", "image/png", big)

	code, _, _, err := ImageValidator(fh)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
}

func TestImageValidatorNilHeader(t *testing.T) {
	code, _, _, err := ImageValidator(nil)
	assert.ErrorIs(t, err, ErrNoFile)
	assert.Equal(t, http.StatusBadRequest, code)
}
