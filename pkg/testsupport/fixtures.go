package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
)

// LoadFixture loads a fixture file. The path is relative to the test package
// directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON loads a JSON fixture into dest.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	if err := sonic.Unmarshal(LoadFixture(t, path), dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// FixturePath joins filename onto the package's testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// Envelope wraps data in the API's {"success", "message", "data"} shape.
func Envelope(t *testing.T, data any) []byte {
	t.Helper()

	body, err := sonic.Marshal(map[string]any{
		"success": true,
		"message": "ok",
		"data":    data,
	})
	if err != nil {
		t.Fatalf("failed to marshal envelope: %v", err)
	}
	return body
}

// ErrorBody is the API's failure shape.
func ErrorBody(t *testing.T, message string) []byte {
	t.Helper()

	body, err := sonic.Marshal(map[string]any{
		"success": false,
		"message": message,
	})
	if err != nil {
		t.Fatalf("failed to marshal error body: %v", err)
	}
	return body
}

// TempFile writes content to a file under t.TempDir and returns its path.
func TempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write temp file %s: %v", path, err)
	}
	return path
}
