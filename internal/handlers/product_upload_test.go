package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func multipartContext(t *testing.T, fields map[string]string, imageName string, imageBody []byte) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	if imageName != "" {
		part, err := writer.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(imageBody); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("POST", "/admin/product/", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	return c
}

func TestParseMultipartProductInputFields(t *testing.T) {
	c := multipartContext(t, map[string]string{
		"name":        "  Wool Sweater ",
		"description": "hand knitted",
		"price":       "49.50",
		"stock":       "12",
		"status":      "active",
	}, "", nil)

	input, err := parseMultipartProductInput(c, t.TempDir())
	if err != nil {
		t.Fatalf("parseMultipartProductInput returned error: %v", err)
	}

	if !input.NameSet || input.Name != "Wool Sweater" {
		t.Errorf("name not parsed/trimmed: %+v", input)
	}
	if !input.PriceSet || input.Price != 49.50 {
		t.Errorf("price not parsed: %+v", input)
	}
	if !input.StockSet || input.Stock != 12 {
		t.Errorf("stock not parsed: %+v", input)
	}
	if !input.StatusSet || input.Status != "active" {
		t.Errorf("status not parsed: %+v", input)
	}
	if input.ImageSet {
		t.Error("image should not be set when no file was uploaded")
	}
}

func TestParseMultipartProductInputPartial(t *testing.T) {
	c := multipartContext(t, map[string]string{"price": "10"}, "", nil)

	input, err := parseMultipartProductInput(c, t.TempDir())
	if err != nil {
		t.Fatalf("parseMultipartProductInput returned error: %v", err)
	}

	if input.NameSet || input.DescriptionSet || input.StockSet || input.StatusSet {
		t.Errorf("absent fields must not be marked set: %+v", input)
	}
	if !input.PriceSet || input.Price != 10 {
		t.Errorf("price not parsed: %+v", input)
	}
}

func TestParseMultipartProductInputBadPrice(t *testing.T) {
	c := multipartContext(t, map[string]string{"price": "cheap"}, "", nil)

	if _, err := parseMultipartProductInput(c, t.TempDir()); err == nil {
		t.Fatal("expected an error for a non-numeric price")
	}
}

func TestParseMultipartProductInputSavesImage(t *testing.T) {
	uploadDir := t.TempDir()
	c := multipartContext(t, map[string]string{"name": "Scarf"}, "scarf.png", []byte("png-bytes"))

	input, err := parseMultipartProductInput(c, uploadDir)
	if err != nil {
		t.Fatalf("parseMultipartProductInput returned error: %v", err)
	}

	if !input.ImageSet {
		t.Fatal("image should be set")
	}
	if !strings.HasPrefix(input.ImagePath, "products/") || !strings.HasSuffix(input.ImagePath, ".png") {
		t.Fatalf("unexpected image path: %s", input.ImagePath)
	}
	saved, err := os.ReadFile(filepath.Join(uploadDir, filepath.FromSlash(input.ImagePath)))
	if err != nil {
		t.Fatalf("saved image not readable: %v", err)
	}
	if string(saved) != "png-bytes" {
		t.Error("saved image content does not match the upload")
	}
}

func TestParseMultipartProductInputRejectsExtension(t *testing.T) {
	c := multipartContext(t, nil, "malware.exe", []byte("nope"))

	if _, err := parseMultipartProductInput(c, t.TempDir()); err == nil {
		t.Fatal("expected an error for a disallowed file extension")
	}
}

func TestSafeDeleteUpload(t *testing.T) {
	uploadDir := t.TempDir()
	dir := filepath.Join(uploadDir, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "old.png")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := safeDeleteUpload(uploadDir, "products/old.png"); err != nil {
		t.Fatalf("safeDeleteUpload returned error: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("file should have been removed")
	}

	// missing files are not an error
	if err := safeDeleteUpload(uploadDir, "products/old.png"); err != nil {
		t.Errorf("deleting an already-missing file should succeed, got %v", err)
	}
}

func TestSafeDeleteUploadStaysInsideRoot(t *testing.T) {
	uploadDir := t.TempDir()
	outside := filepath.Join(filepath.Dir(uploadDir), "victim.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(outside)

	// traversal segments are re-rooted under the upload dir
	if err := safeDeleteUpload(uploadDir, "../victim.txt"); err != nil {
		t.Fatalf("re-rooted delete should succeed, got %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("file outside the upload dir must not be touched")
	}

	// the upload root itself is never a deletion target
	if err := safeDeleteUpload(uploadDir, ".."); err == nil {
		t.Fatal("expected deleting the root to be refused")
	}
}
